// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Development defaults created by Seed.
const (
	SeedUsername = "admin"
	SeedPassword = "admin"
	SeedCategory = "General"
)

// Seed populates an empty database with a staff account and a starter
// category. It does nothing once any user exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (username, email, first_name, password_hash, is_staff)
		VALUES ($1, $2, $3, $4, TRUE)
	`, SeedUsername, "admin@inkwell.local", "Admin", string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, SeedCategory, "general", "Articles that do not fit anywhere else.")
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default staff user",
		"username", SeedUsername,
		"password", SeedPassword,
	)
	return nil
}
