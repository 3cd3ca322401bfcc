package store

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/lemu/seamless-sea-sub003/pkg/config"
	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
	"github.com/lemu/seamless-sea-sub003/pkg/observability"
)

// connectDelay is the first backoff step when a remote backend is not
// reachable yet.
const connectDelay = 500 * time.Millisecond

// Open builds the repository selected by cfg.Backend. The result logs every
// call at debug level and reports it to the observability hooks.
func Open(ctx context.Context, cfg config.Store, logger *log.Logger) (Repository, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	keyer := NewScopedKeyer(NewDefaultKeyer(), cfg.KeyPrefix)

	var (
		repo Repository
		err  error
	)
	switch cfg.Backend {
	case "", config.BackendMemory:
		repo = NewMemoryStore()
	case config.BackendFile:
		repo, err = NewFileStore(cfg.Dir, keyer, logger)
	case config.BackendSQLite:
		repo, err = NewSQLiteStore(cfg.DSN, keyer)
	case config.BackendRedis:
		repo, err = DialRedis(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, keyer, logger)
	case config.BackendMongo:
		repo, err = DialMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, keyer, logger)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	backend := cfg.Backend
	if backend == "" {
		backend = config.BackendMemory
	}
	logger.Debug("layout store ready", "backend", backend)
	return Instrument(repo, backend, logger), nil
}

// Instrument wraps repo with debug logging and observability hooks.
func Instrument(repo Repository, backend string, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &instrumented{Repository: repo, backend: backend, logger: logger.With("store", backend)}
}

type instrumented struct {
	Repository
	backend string
	logger  *log.Logger
}

func (r *instrumented) ReadLayouts(ctx context.Context, boardID string) (grid.Layouts, error) {
	start := time.Now()
	ls, err := r.Repository.ReadLayouts(ctx, boardID)
	dur := time.Since(start)
	observability.Store().OnRead(ctx, r.backend, boardID, dur, err)
	if err != nil {
		r.logger.Debug("read failed", "board", boardID, "err", err)
	} else {
		r.logger.Debug("read layouts", "board", boardID, "breakpoints", len(ls), "took", dur)
	}
	return ls, err
}

func (r *instrumented) WriteLayout(ctx context.Context, boardID, breakpoint string, layout grid.Layout) error {
	start := time.Now()
	err := r.Repository.WriteLayout(ctx, boardID, breakpoint, layout)
	dur := time.Since(start)
	observability.Store().OnWrite(ctx, r.backend, boardID, breakpoint, dur, err)
	if err != nil {
		r.logger.Debug("write failed", "board", boardID, "breakpoint", breakpoint, "err", err)
	} else {
		r.logger.Debug("wrote layout", "board", boardID, "breakpoint", breakpoint, "rects", len(layout), "took", dur)
	}
	return err
}
