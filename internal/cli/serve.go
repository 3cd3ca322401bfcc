package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/httpapi"
)

// shutdownTimeout bounds how long in-flight requests may take once the
// server is asked to stop.
const shutdownTimeout = 5 * time.Second

// serveOpts holds options for the serve command.
type serveOpts struct {
	addr string
}

// serveCommand creates the serve command for the layout HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve board layouts over HTTP",
		Long: `Serve the layout API: read and write board layouts per breakpoint, place
widgets without persisting, and stream layout changes as server-sent events.`,
		Example: `  seamless serve
  seamless serve --addr :9090 --store redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
		if err := errors.ValidateAddr(cfg.Server.Addr); err != nil {
			return err
		}
	}

	repo, err := c.openStore(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer repo.Close()

	api := httpapi.New(repo, httpapi.Options{
		Breakpoints: cfg.Grid.Breakpoints,
		RowCeiling:  cfg.Grid.RowCeiling,
		Logger:      c.Logger,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printInfo("Serving layouts")
		printKeyValue("addr", cfg.Server.Addr)
		printKeyValue("store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(errors.ErrCodeInternal, err, "serve %s", cfg.Server.Addr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	printSuccess("Server stopped")
	return nil
}
