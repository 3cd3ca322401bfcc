package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer names the backend records of a board.
type Keyer interface {
	// BoardKey names the record holding a board's layouts.
	BoardKey(boardID string) string
	// ChannelKey names the change notification channel of a board.
	ChannelKey(boardID string) string
}

// DefaultKeyer produces unscoped keys ("layouts:<board>").
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// BoardKey implements Keyer.
func (DefaultKeyer) BoardKey(boardID string) string { return "layouts:" + boardID }

// ChannelKey implements Keyer.
func (DefaultKeyer) ChannelKey(boardID string) string { return "layouts-changed:" + boardID }

// ScopedKeyer wraps a Keyer with a prefix so that boards of different users
// or organisations never share records.
//
// Example usage:
//
//	// Personal boards
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:u-42:")
//
//	// Boards shared across an organisation
//	orgKeyer := NewScopedKeyer(NewDefaultKeyer(), "org:acme:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. An empty prefix returns inner.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// BoardKey implements Keyer.
func (k *ScopedKeyer) BoardKey(boardID string) string {
	return k.prefix + k.inner.BoardKey(boardID)
}

// ChannelKey implements Keyer.
func (k *ScopedKeyer) ChannelKey(boardID string) string {
	return k.prefix + k.inner.ChannelKey(boardID)
}

// hashKey returns a filesystem-safe digest of a key.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
