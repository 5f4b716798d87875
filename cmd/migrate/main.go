package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/saasbase-io/saasbase/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	dbURL := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", "saasbase"),
		env.GetEnv("DB_PASSWORD", "saasbase"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "saasbase_db"),
	)

	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		log.Fatalf("failed to initialize migrations: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("failed to close migration resources: %v, %v", sourceErr, dbErr)
		}
	}()

	switch command {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migration up failed: %v", err)
		} else if err == migrate.ErrNoChange {
			log.Println("no changes: database is up to date")
		} else {
			log.Println("migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		log.Println("rolled back last migration")

	case "goto":
		if len(os.Args) < 3 {
			log.Fatalf("please provide a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("invalid version number: %v", err)
		}
		if err := m.Migrate(uint(version)); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migration to version %d failed: %v", version, err)
		}
		log.Printf("migrated to version %d", version)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("failed to read version: %v", err)
		}
		log.Printf("version: %d, dirty: %v", version, dirty)

	case "force":
		if len(os.Args) < 3 {
			log.Fatalf("please provide a version number")
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("invalid version number: %v", err)
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("force failed: %v", err)
		}
		log.Printf("forced version %d", version)

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`usage: migrate <command>

commands:
  up              apply all pending migrations
  down            roll back the last migration
  goto <version>  migrate to a specific version
  version         print the current version
  force <version> force a version without running migrations`)
}
