package main

import (
	"database/sql"
	"flag"
	"log"

	"github.com/joshkonopka69/fitness-sub000/pkg/config"
	"github.com/joshkonopka69/fitness-sub000/pkg/database"
	"github.com/joshkonopka69/fitness-sub000/pkg/logger"
)

// Usage: migrate [-steps N] up|down|version
func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	conn, err := sql.Open("postgres", database.DSN(cfg.Database))
	if err != nil {
		sugar.Fatalw("open database", "error", err)
	}
	migrator, err := database.NewMigrator(conn, cfg.Database.MigrationsPath)
	if err != nil {
		sugar.Fatalw("init migrator", "error", err)
	}
	defer migrator.Close() //nolint:errcheck

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down(*steps)
	case "version":
	default:
		sugar.Fatalw("unknown command", "command", command)
	}
	if err != nil {
		sugar.Fatalw("migration failed", "command", command, "error", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		sugar.Fatalw("read schema version", "error", err)
	}
	sugar.Infow("schema version", "command", command, "version", version, "dirty", dirty)
}
