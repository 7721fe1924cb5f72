package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/attrition-dashboard/internal/config"
	"github.com/sells-group/attrition-dashboard/internal/dashboard"
	"github.com/sells-group/attrition-dashboard/internal/web"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runServe(ctx, cfg)
	},
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func runServe(ctx context.Context, c *config.Config) error {
	src, err := newSource(c)
	if err != nil {
		return err
	}

	// Warm the cache. A bad file is reported on the page, not here.
	if _, err := src.Dataset(ctx); err != nil {
		zap.L().Warn("dataset not loaded at startup", zap.String("path", src.Path()), zap.Error(err))
	}

	s, err := web.New(dashboard.NewService(src), c.Server, c.Chart)
	if err != nil {
		return err
	}
	srv := s.HTTPServer(fmt.Sprintf(":%d", c.Server.Port))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("starting server", zap.Int("port", c.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server shutdown")
		}
		return nil
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
