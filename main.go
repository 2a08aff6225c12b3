package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mapquiz/go-server/internal/atlas"
	"github.com/mapquiz/go-server/internal/challenge"
	"github.com/mapquiz/go-server/internal/httpserver"
	"github.com/mapquiz/go-server/internal/store"
)

// atlasPools feeds the atlas country lists to the daily challenge generator.
type atlasPools struct{}

func (atlasPools) Territories() []string  { return atlas.Territories() }
func (atlasPools) WithCapitals() []string { return atlas.WithCapitals() }

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := atlas.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load country data")
	}

	db, err := openDB(getEnv("DATABASE_PATH", "./data/mapquiz.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	mem := store.NewMemoryStore()
	challenges := challenge.NewProvider(atlasPools{})
	srv := httpserver.New(mem, db, challenges)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
