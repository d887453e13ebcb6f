package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/medisync/backend/internal/infrastructure/config"
	"github.com/medisync/backend/internal/infrastructure/logger"
	"github.com/medisync/backend/internal/infrastructure/migration"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: migrate [flags] <command>

Commands:
  up              Apply all pending migrations
  down            Roll back one migration
  steps <n>       Apply n migrations (negative rolls back)
  version         Print current schema version
  force <v>       Set schema version without migrating (dirty recovery)

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", "", "migrations directory (default: ./migrations)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if migrationsPath == "" {
		migrationsPath = discoverMigrationsPath()
	}

	m, err := migration.NewFromURL(cfg.Database.DSN(), migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Error("Error closing migrator", zap.Error(err))
		}
	}()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		n, parseErr := intArg(1)
		if parseErr != nil {
			log.Fatal("steps requires an integer argument", zap.Error(parseErr))
		}
		err = m.Steps(n)
	case "version":
		version, dirty, vErr := m.Version()
		if vErr != nil {
			log.Fatal("Failed to read version", zap.Error(vErr))
		}
		fmt.Printf("version=%d dirty=%v\n", version, dirty)
	case "force":
		v, parseErr := intArg(1)
		if parseErr != nil {
			log.Fatal("force requires an integer argument", zap.Error(parseErr))
		}
		err = m.Force(v)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
}

func intArg(i int) (int, error) {
	if flag.NArg() <= i {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.Atoi(flag.Arg(i))
}

// discoverMigrationsPath looks for a migrations directory next to the
// working directory first, then next to the executable.
func discoverMigrationsPath() string {
	if _, err := os.Stat("migrations"); err == nil {
		return "migrations"
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "migrations"
}
