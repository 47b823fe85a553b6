// Command migrate prepares a storage backend: it applies the SQL schema and
// optionally seeds groups from a JSON file.
//
//	migrate -backend sqlite -sqlite-path data/groupbot.db -seed groups.json
//
// The seed file looks like {"created_by": 1000, "groups": ["ECO-22", "ECO-23"]}.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/kapu/group-notice-bot/internal/app"
	"github.com/kapu/group-notice-bot/internal/config"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/service/group"
	"github.com/kapu/group-notice-bot/internal/util"
	"go.uber.org/zap"
)

var (
	backend    = flag.String("backend", config.BackendSQLite, "storage backend (sqlite, postgres, redis)")
	sqlitePath = flag.String("sqlite-path", "data/groupbot.db", "SQLite database file")
	dbHost     = flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort     = flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser     = flag.String("db-user", "groupbot", "PostgreSQL user")
	dbPass     = flag.String("db-pass", "", "PostgreSQL password")
	dbName     = flag.String("db-name", "groupbot", "PostgreSQL database")
	dbSSLMode  = flag.String("db-sslmode", "disable", "PostgreSQL sslmode")
	redisHost  = flag.String("redis-host", "localhost", "Redis host")
	redisPort  = flag.Int("redis-port", 6379, "Redis port")
	seedFile   = flag.String("seed", "", "JSON file with groups to create")
	dryRun     = flag.Bool("dry-run", false, "print the groups that would be created without writing them")
	verbose    = flag.Bool("verbose", false, "debug logging")
)

type seedData struct {
	CreatedBy int64    `json:"created_by"`
	Groups    []string `json:"groups"`
}

type seedSummary struct {
	Created []string
	Skipped []string
}

func main() {
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := util.NewLogger(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: strings.ToLower(*backend), Timeout: 5 * time.Second},
		Postgres: config.PostgresConfig{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Password: *dbPass,
			Database: *dbName,
			SSLMode:  *dbSSLMode,
		},
		SQLite: config.SQLiteConfig{Path: *sqlitePath},
		Redis:  config.RedisConfig{Host: *redisHost, Port: *redisPort},
	}
	if cfg.Storage.Backend == config.BackendMemory {
		return fmt.Errorf("the memory backend has nothing to migrate")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()
	logger.Info("Storage ready", zap.String("backend", storage.Backend))

	if *seedFile == "" {
		return nil
	}

	seed, err := loadSeed(*seedFile)
	if err != nil {
		return err
	}

	summary, err := seedGroups(ctx, group.NewRegistry(storage.Groups, logger), seed, *dryRun)
	if err != nil {
		return err
	}
	logger.Info("Seed complete",
		zap.Bool("dry_run", *dryRun),
		zap.Strings("created", summary.Created),
		zap.Strings("skipped", summary.Skipped),
	)
	return nil
}

func loadSeed(path string) (*seedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedData
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// seedGroups creates every listed group that does not exist yet. Existing
// groups are skipped, so the seed can be re-applied.
func seedGroups(ctx context.Context, registry *group.Registry, seed *seedData, dryRun bool) (*seedSummary, error) {
	summary := &seedSummary{}
	for _, raw := range seed.Groups {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if strings.ContainsFunc(name, unicode.IsSpace) {
			return summary, fmt.Errorf("group name %q contains whitespace", name)
		}

		if dryRun {
			exists, err := registry.Exists(ctx, name)
			if err != nil {
				return summary, err
			}
			if exists {
				summary.Skipped = append(summary.Skipped, name)
			} else {
				summary.Created = append(summary.Created, name)
			}
			continue
		}

		_, err := registry.Create(ctx, name, domain.MemberID(seed.CreatedBy))
		switch {
		case err == nil:
			summary.Created = append(summary.Created, name)
		case group.IsAlreadyExists(err):
			summary.Skipped = append(summary.Skipped, name)
		default:
			return summary, fmt.Errorf("create group %q: %w", name, err)
		}
	}
	return summary, nil
}
