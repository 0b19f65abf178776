package main

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/internal/httpserver"
	"github.com/robalobadob/wordtiles/internal/prefs"
	"github.com/robalobadob/wordtiles/internal/session"
)

// config is everything main reads from the environment (and .env).
type config struct {
	Port       string
	LogLevel   string
	DBPath     string
	LevelsFile string
	Server     httpserver.Config
}

func loadConfig() config {
	return config{
		Port:       getEnv("PORT", "5175"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DBPath:     getEnv("DB_PATH", "./data/wordtiles.db"),
		LevelsFile: os.Getenv("LEVELS_FILE"),
		Server: httpserver.Config{
			JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
			JWTExpiresDays: getEnvInt("JWT_EXPIRES_DAYS", 14),
			CookieName:     getEnv("COOKIE_NAME", "wordtiles_token"),
			Secure:         os.Getenv("APP_ENV") == "production",
			ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
			PrefsScope:     getEnv("PREFS_SCOPE", prefs.DefaultScope),
			ResolveDelay:   getEnvDuration("RESOLVE_DELAY", session.DefaultResolveDelay),
		},
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		return def
	}
	return n
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not a duration, using default")
		return def
	}
	return d
}
