package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"rift-rewind/internal/config"
	"rift-rewind/internal/constants"
	fxmodules "rift-rewind/internal/fx"
	"rift-rewind/internal/middleware"
	"rift-rewind/internal/repository"
	"rift-rewind/internal/server"
	"rift-rewind/internal/state"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runJanitor),
		fx.Invoke(runServer),
	).Run()
}

// runJanitor evicts idle sessions and expired cached payloads.
func runJanitor(lc fx.Lifecycle, sessions *state.Sessions, cache *repository.PayloadCacheRepository, logger zerolog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sessions.Run(ctx, constants.SessionSweep)
			go func() {
				ticker := time.NewTicker(constants.SessionSweep)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						n, err := cache.Purge(ctx)
						if err != nil {
							logger.Warn().Err(err).Msg("failed to purge payload cache")
						} else if n > 0 {
							logger.Debug().Int64("removed", n).Msg("purged payload cache")
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func runServer(
	lc fx.Lifecycle,
	rewindServer *server.RewindServer,
	chartHandler *server.ChartHandler,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	path, handler := server.NewRewindServiceHandler(rewindServer)
	mux.Handle(path, handler)
	chartHandler.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Grpc-Status", "Grpc-Message"},
		MaxAge:         7200,
	})

	requestIDMiddleware := middleware.RequestID(logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: c.Handler(requestIDMiddleware(mux)),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
