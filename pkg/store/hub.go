package store

import (
	"context"
	"sync"

	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// hub fans board changes out to in-process subscribers.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan grid.Layouts]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan grid.Layouts]struct{})}
}

// subscribe registers a subscriber that is removed and closed when ctx ends.
func (h *hub) subscribe(ctx context.Context, boardID string) <-chan grid.Layouts {
	ch := make(chan grid.Layouts, 1)

	h.mu.Lock()
	if h.subs[boardID] == nil {
		h.subs[boardID] = make(map[chan grid.Layouts]struct{})
	}
	h.subs[boardID][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[boardID][ch]; ok {
			delete(h.subs[boardID], ch)
			if len(h.subs[boardID]) == 0 {
				delete(h.subs, boardID)
			}
			close(ch)
		}
	}()
	return ch
}

// publish delivers ls to every subscriber of the board.
func (h *hub) publish(boardID string, ls grid.Layouts) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[boardID] {
		offer(ch, ls.Clone())
	}
}

// close closes every subscriber channel.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for board, subs := range h.subs {
		for ch := range subs {
			close(ch)
		}
		delete(h.subs, board)
	}
}
