// Package test_utils boots the Postgres instance shared by repository tests.
//
// A package's TestMain calls TestWithDB once. The container starts with dev/init.sql (schema only),
// every migration is applied and the resulting empty database is snapshotted. Each test opens its own
// pool, seeds the rows it needs with the Seed* helpers and restores the snapshot in t.Cleanup, so
// tests never see each other's data.
package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripkas/tripkas/internal/config"
	"github.com/tripkas/tripkas/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	postgresImage = "postgres:18.1-alpine"
	snapshotName  = "tripkas-migrated"
)

var testDatabase = config.Database{
	User:   "test_tripkas",
	Pass:   "test_tripkas",
	Name:   "tripkas",
	Schema: "tripkas",
}

// TestWithDB returns the running container and an opener for fresh pools against it. Failing to
// start or migrate ends the test binary, there is nothing to run without a database.
func TestWithDB() (*postgres.PostgresContainer, func() *pgxpool.Pool) {
	ctx := context.Background()

	container, err := startContainer(ctx)
	if err != nil {
		log.Errorf("postgres test container did not start: %v", err)
		os.Exit(1)
	}

	cfg, err := containerConfig(ctx, container)
	if err != nil {
		log.Fatalf("could not resolve postgres test container address: %v", err)
	}
	if err := database.Migrate(cfg); err != nil {
		log.Fatalf("migrations failed on the test database: %v", err)
	}
	if err := container.Snapshot(ctx, postgres.WithSnapshotName(snapshotName)); err != nil {
		log.Fatalf("could not snapshot the migrated test database: %v", err)
	}

	return container, func() *pgxpool.Pool {
		db, err := database.Open(cfg)
		if err != nil {
			log.Fatalf("could not open a pool on the test database: %v", err)
		}
		return db
	}
}

func startContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	root, err := moduleRoot()
	if err != nil {
		return nil, err
	}
	return postgres.Run(ctx, postgresImage,
		postgres.WithInitScripts(filepath.Join(root, "dev", "init.sql")),
		postgres.WithDatabase(testDatabase.Name),
		postgres.WithUsername(testDatabase.User),
		postgres.WithPassword(testDatabase.Pass),
		postgres.BasicWaitStrategies(),
	)
}

// containerConfig points testDatabase at the host and port the container was mapped to.
func containerConfig(ctx context.Context, container *postgres.PostgresContainer) (config.Database, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return config.Database{}, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return config.Database{}, err
	}
	cfg := testDatabase
	cfg.Host = host
	cfg.Port = port.Int()
	log.Infof("Test database listening on %s:%d", cfg.Host, cfg.Port)
	return cfg, nil
}

// moduleRoot is the nearest directory above the working directory holding go.mod. Tests run from
// their package directory, dev/init.sql lives at the root.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}
