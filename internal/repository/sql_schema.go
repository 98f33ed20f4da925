package repository

import (
	"context"
	"fmt"
)

var sqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		uid TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		event_date BIGINT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		max_participants BIGINT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS registration_forms (
		uid TEXT PRIMARY KEY,
		event_uid TEXT NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL,
		custom_fields TEXT NOT NULL,
		max_registrations BIGINT,
		registration_deadline BIGINT,
		confirmation_message TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		uid TEXT PRIMARY KEY,
		form_uid TEXT NOT NULL,
		event_uid TEXT NOT NULL,
		user_uid TEXT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		nationality TEXT NOT NULL,
		school TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		student_id TEXT NOT NULL DEFAULT '',
		custom_responses TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled')),
		submitted_at BIGINT NOT NULL,
		updated_at BIGINT,
		UNIQUE (event_uid, email)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_form ON registrations (form_uid)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_user ON registrations (user_uid)`,
	`CREATE TABLE IF NOT EXISTS registration_counters (
		event_uid TEXT PRIMARY KEY,
		taken BIGINT NOT NULL CHECK (taken >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		uid TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
}

// Migrate creates the tables when they do not exist yet.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for i, stmt := range sqlSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
