// Package repository declares the external-collaborator interfaces the
// pipeline consumes: the feed registry (ledger object store) and the blob
// store (content-addressed script storage). The core depends only on these
// interfaces; concrete backends live in subpackages.
package repository

import (
	"context"

	"github.com/sakif/oracle-enclave/internal/model"
)

// FeedRegistry resolves and maintains feed schema records.
type FeedRegistry interface {
	GetFeed(ctx context.Context, id string) (*model.Feed, error)
	CreateFeed(ctx context.Context, feed *model.Feed) error
	// UpdateResult records the latest successfully produced value and the
	// timestamp of the update.
	UpdateResult(ctx context.Context, id string, result model.OracleValue, timestampMS uint64) error
}

// BlobStore retrieves raw script payload bytes by blob reference.
type BlobStore interface {
	GetBlob(ctx context.Context, ref string) ([]byte, error)
}

// BlobWriter stores payload bytes and returns their content-addressed
// reference. Only local backends implement it; the public aggregator is
// read-only from this server's point of view.
type BlobWriter interface {
	PutBlob(ctx context.Context, data []byte) (string, error)
}
