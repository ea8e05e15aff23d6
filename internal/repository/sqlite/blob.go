package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/sakif/oracle-enclave/internal/apperror"
)

// BlobRef computes the content-addressed reference of a payload:
// hex(blake2b-256(data)). Storing under the content hash means a ref can be
// handed out before the script is published and can never point at bytes
// other than the ones it was computed from.
func BlobRef(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetBlob returns the payload bytes stored under ref.
func (db *DB) GetBlob(ctx context.Context, ref string) ([]byte, error) {
	var data []byte
	err := db.conn.QueryRowContext(ctx,
		`SELECT data FROM blobs WHERE ref = ?`, ref,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("blob", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying blob: %w", err)
	}
	return data, nil
}

// PutBlob stores data under its content-addressed reference and returns the
// reference. Storing the same bytes twice is a no-op.
func (db *DB) PutBlob(ctx context.Context, data []byte) (string, error) {
	ref := BlobRef(data)

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO blobs (ref, data) VALUES (?, ?)
		 ON CONFLICT(ref) DO NOTHING`, ref, data)
	if err != nil {
		return "", fmt.Errorf("sqlite: inserting blob: %w", err)
	}
	return ref, nil
}
