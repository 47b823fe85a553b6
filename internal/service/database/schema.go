package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Timestamps are stored as Unix milliseconds so both dialects share one schema.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS notice_groups (
		name       TEXT PRIMARY KEY,
		created_by BIGINT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id            BIGINT PRIMARY KEY,
		group_name    TEXT NOT NULL DEFAULT '',
		is_leader     BOOLEAN NOT NULL DEFAULT FALSE,
		registered_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_members_group_name ON members (group_name)`,
	`CREATE TABLE IF NOT EXISTS announcements (
		group_name   TEXT PRIMARY KEY,
		id           TEXT NOT NULL,
		body         TEXT NOT NULL,
		author_id    BIGINT NOT NULL,
		published_at BIGINT NOT NULL
	)`,
}

// Migrate creates the tables if they are missing. It is safe to run repeatedly.
func (s *Service) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	s.logger.Info("Schema ready", zap.String("dialect", string(s.dialect)))
	return nil
}
