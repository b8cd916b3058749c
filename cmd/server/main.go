package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/tetris-server/internal/config"
	"github.com/DoyleJ11/tetris-server/internal/httpapi"
	"github.com/DoyleJ11/tetris-server/internal/hub"
	"github.com/DoyleJ11/tetris-server/internal/logging"
	"github.com/DoyleJ11/tetris-server/internal/ws"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile, addr string

	cmd := &cobra.Command{
		Use:           "tetris-server",
		Short:         "Serve Tetris games over HTTP and websockets",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogDev)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides TETRIS_ADDR")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	h := hub.NewHub(ctx, cfg.Room(), log.Named("hub"))

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, ws.Options{
		OriginPatterns: cfg.AllowedOrigins,
		ReadTimeout:    cfg.ReadTimeout,
	}, log.Named("http"))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr),
			zap.Duration("tick_interval", cfg.TickInterval),
			zap.Int("move_threshold", cfg.MoveThreshold))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// rooms stop with ctx; the hub needs no explicit shutdown here
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
