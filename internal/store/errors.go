// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/apperr"
)

// PostgreSQL error codes the stores translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeStringTooLong       = "22001"
	codeTooManyConnections  = "53300"
	codeAdminShutdown       = "57P01"
	codeCannotConnectNow    = "57P03"
)

// constraintFields maps schema constraint names to the client-facing field
// they guard.
var constraintFields = map[string]string{
	"articles_slug_key":                   "slug",
	"articles_featured_image_id_fkey":     "featured_image",
	"articles_og_image_id_fkey":           "og_image",
	"articles_author_id_fkey":             "author",
	"articles_published_date_check":       "published_date",
	"article_categories_category_id_fkey": "categories",
	"categories_name_key":                 "name",
	"categories_slug_key":                 "slug",
	"users_username_key":                  "username",
	"media_s3_key_key":                    "s3_key",
	"media_uploader_id_fkey":              "uploader",
}

func constraintField(name string) string {
	if f, ok := constraintFields[name]; ok {
		return f
	}
	return "detail"
}

// classify translates a driver error into the application taxonomy.
// Anything it does not recognise is wrapped with op and returned as is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		field := constraintField(pgErr.ConstraintName)
		switch {
		case pgErr.Code == codeUniqueViolation:
			return &apperr.ConflictError{Field: field, Message: "A record with this " + field + " already exists."}
		case pgErr.Code == codeForeignKeyViolation:
			return apperr.Invalid(field, "Referenced object does not exist.")
		case pgErr.Code == codeCheckViolation, pgErr.Code == codeStringTooLong:
			return apperr.Invalid(field, pgErr.Message)
		case strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == codeTooManyConnections,
			pgErr.Code == codeAdminShutdown,
			pgErr.Code == codeCannotConnectNow:
			return &apperr.TransientError{Op: op, Err: err}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err) ||
		errors.As(err, &netErr) {
		return &apperr.TransientError{Op: op, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
