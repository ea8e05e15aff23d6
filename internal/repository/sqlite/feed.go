package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/oracle-enclave/internal/apperror"
	"github.com/sakif/oracle-enclave/internal/model"
)

// GetFeed returns the feed schema record for id.
func (db *DB) GetFeed(ctx context.Context, id string) (*model.Feed, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, blob_ref, language, return_type, last_result,
		       update_cadence_ms, last_update_ms
		FROM feeds WHERE id = ?
	`, id)

	var (
		feed       model.Feed
		lastResult sql.NullString
	)
	err := row.Scan(&feed.ID, &feed.BlobRef, &feed.Language, &feed.ReturnType,
		&lastResult, &feed.UpdateCadenceMS, &feed.LastUpdateMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("feed", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying feed: %w", err)
	}

	if lastResult.Valid {
		var v model.OracleValue
		if err := json.Unmarshal([]byte(lastResult.String), &v); err != nil {
			return nil, fmt.Errorf("sqlite: decoding last result for feed %s: %w", id, err)
		}
		feed.LastResult = &v
	}

	return &feed, nil
}

// CreateFeed inserts a new feed schema record.
func (db *DB) CreateFeed(ctx context.Context, feed *model.Feed) error {
	var lastResult any // nil unless the feed was created with a seed value
	if feed.LastResult != nil {
		b, err := json.Marshal(feed.LastResult)
		if err != nil {
			return fmt.Errorf("sqlite: encoding last result: %w", err)
		}
		lastResult = string(b)
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO feeds (id, blob_ref, language, return_type, last_result,
		                   update_cadence_ms, last_update_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, feed.ID, feed.BlobRef, string(feed.Language), string(feed.ReturnType),
		lastResult, feed.UpdateCadenceMS, feed.LastUpdateMS)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.ValidationFailed("id", fmt.Sprintf("feed %s already exists", feed.ID))
		}
		return fmt.Errorf("sqlite: inserting feed: %w", err)
	}
	return nil
}

// UpdateResult records the latest produced value and update timestamp.
func (db *DB) UpdateResult(ctx context.Context, id string, result model.OracleValue, timestampMS uint64) error {
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("sqlite: encoding result: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE feeds SET last_result = ?, last_update_ms = ? WHERE id = ?
	`, string(b), timestampMS, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating feed result: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("feed", id)
	}
	return nil
}
