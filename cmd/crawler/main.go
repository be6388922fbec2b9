package main

import (
	"context"
	"database/sql"
	"errors"

	fxmodules "lol-crawler/internal/fx"
	"lol-crawler/internal/walker"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runWalker),
	).Run()
}

func runWalker(
	lc fx.Lifecycle,
	w *walker.Walker,
	db *sql.DB,
	shutdowner fx.Shutdowner,
	logger zerolog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				logger.Info().Msg("starting random walk")
				err := w.Run(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("walk stopped unexpectedly")
				}
				if err := shutdowner.Shutdown(); err != nil {
					logger.Error().Err(err).Msg("shutdown failed")
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Info().Msg("stopping walk")
			cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("crawler stopped gracefully")
			return nil
		},
	})
}
