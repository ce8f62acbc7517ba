// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// MediaStore handles all media-related database operations.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `id, filename, original_name, content_type, size_bytes,
	s3_key, alt_text, uploader_id, created_at`

// scanMedia scans a media row from the result set.
func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.OriginalName, &m.ContentType, &m.SizeBytes,
		&m.S3Key, &m.AltText, &m.UploaderID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media record, filling in the generated id.
func (s *MediaStore) Create(ctx context.Context, m *models.Media) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO media (filename, original_name, content_type, size_bytes,
			s3_key, alt_text, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		m.Filename, m.OriginalName, m.ContentType, m.SizeBytes,
		m.S3Key, m.AltText, m.UploaderID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return classify("create media", err)
	}
	return nil
}

// FindByID retrieves a single media record by its UUID. Returns nil if not found.
func (s *MediaStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find media by id", err)
	}
	return m, nil
}

// FindByIDs returns the media records among ids that exist.
func (s *MediaStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Media, error) {
	return findMediaByIDs(ctx, s.db, ids)
}

// Delete removes a media record. Articles pointing at it have the
// reference cleared by the schema.
func (s *MediaStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return classify("delete media", err)
	}
	return nil
}

func findMediaByIDs(ctx context.Context, db *sql.DB, ids []uuid.UUID) ([]models.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, classify("find media by ids", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, classify("scan media", err)
		}
		items = append(items, *m)
	}
	return items, classify("find media by ids", rows.Err())
}
