package store

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// RedisStore keeps each board in a hash (breakpoint -> layout JSON) and
// announces writes on a per-board pub/sub channel, so subscribers in other
// processes see every commit.
type RedisStore struct {
	client *redis.Client
	keyer  Keyer
	logger *log.Logger
	owned  bool
}

// NewRedisStore uses an existing client. Close leaves the client open.
func NewRedisStore(client *redis.Client, keyer Keyer, logger *log.Logger) *RedisStore {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &RedisStore{client: client, keyer: keyer, logger: logger}
}

// DialRedis connects to the server at addr and verifies the connection.
// The returned store owns the client.
func DialRedis(ctx context.Context, opts *redis.Options, keyer Keyer, logger *log.Logger) (*RedisStore, error) {
	client := redis.NewClient(opts)
	err := retry(ctx, 3, connectDelay, func() error {
		return retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect redis %s", opts.Addr)
	}
	s := NewRedisStore(client, keyer, logger)
	s.owned = true
	return s, nil
}

// ReadLayouts implements Repository.
func (s *RedisStore) ReadLayouts(ctx context.Context, boardID string) (grid.Layouts, error) {
	fields, err := s.client.HGetAll(ctx, s.keyer.BoardKey(boardID)).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read board %s", boardID)
	}
	ls := make(grid.Layouts, len(fields))
	for bp, data := range fields {
		l, err := decodeLayout([]byte(data))
		if err != nil {
			return nil, err
		}
		ls[bp] = l
	}
	return ls, nil
}

// WriteLayout implements Repository.
func (s *RedisStore) WriteLayout(ctx context.Context, boardID, breakpoint string, layout grid.Layout) error {
	if err := checkWrite(boardID, breakpoint, layout); err != nil {
		return err
	}
	data, err := encodeLayout(layout)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.keyer.BoardKey(boardID), breakpoint, data)
		pipe.Publish(ctx, s.keyer.ChannelKey(boardID), breakpoint)
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write board %s", boardID)
	}
	return nil
}

// Subscribe implements Repository. Each notification triggers a fresh read
// of the board hash.
func (s *RedisStore) Subscribe(ctx context.Context, boardID string) (<-chan grid.Layouts, error) {
	ps := s.client.Subscribe(ctx, s.keyer.ChannelKey(boardID))
	// Wait for the subscription to be confirmed so no write is missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "subscribe board %s", boardID)
	}

	out := make(chan grid.Layouts, 1)
	msgs := ps.Channel()
	logger := s.logger.With("board", boardID)

	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				ls, err := s.ReadLayouts(ctx, boardID)
				if err != nil {
					if ctx.Err() == nil {
						logger.Warn("reload after notification failed", "err", err)
					}
					continue
				}
				offer(out, ls)
			}
		}
	}()
	return out, nil
}

// Close implements Repository.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ Repository = (*RedisStore)(nil)
