package main

import (
	"database/sql"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/pixelmint/backend/internal/infra"
	"github.com/pixelmint/backend/internal/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := migrations.Up(db); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	case "down":
		if err := migrations.Down(db); err != nil {
			logger.Fatal().Err(err).Msg("rollback failed")
		}
	case "version":
		v, dirty, err := migrations.Version(db)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read version")
		}
		logger.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
		return
	default:
		logger.Fatal().Str("command", cmd).Msg("unknown command (want up, down or version)")
	}

	v, dirty, err := migrations.Version(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read version")
	}
	logger.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
}
