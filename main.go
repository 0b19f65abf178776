package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/assets"
	"github.com/robalobadob/wordtiles/internal/db"
	"github.com/robalobadob/wordtiles/internal/httpserver"
	"github.com/robalobadob/wordtiles/internal/prefs"
	"github.com/robalobadob/wordtiles/internal/store"
	"github.com/robalobadob/wordtiles/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.OpenAndMigrate(ctx, cfg.DBPath, assets.Migrations())
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open database")
	}
	defer conn.Close()

	lookup := words.NewStore(conn)
	if cfg.LevelsFile != "" {
		if _, err := lookup.Import(ctx, cfg.LevelsFile); err != nil {
			log.Fatal().Err(err).Msg("failed to import levels")
		}
	}
	if n, err := lookup.Levels(ctx); err == nil {
		log.Info().Int("levels", n).Msg("word store ready")
	}

	srv := httpserver.New(cfg.Server, store.NewMemoryStore(), lookup, prefs.NewSQLStore(conn))
	log.Info().Str("port", cfg.Port).Msg("starting wordtiles server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("server stopped")
}
