package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/oracle-enclave/internal/apperror"
	"github.com/sakif/oracle-enclave/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFeedRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	feed := &model.Feed{
		ID:              "btc-usd",
		BlobRef:         "ref1",
		Language:        model.LanguageJS,
		ReturnType:      model.ReturnNumber,
		UpdateCadenceMS: 60_000,
	}
	require.NoError(t, db.CreateFeed(ctx, feed))

	got, err := db.GetFeed(ctx, "btc-usd")
	require.NoError(t, err)
	assert.Equal(t, feed, got)
	assert.Nil(t, got.LastResult)
}

func TestGetFeedNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetFeed(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateFeedDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	feed := &model.Feed{ID: "f", BlobRef: "r", Language: model.LanguageLua, ReturnType: model.ReturnString}
	require.NoError(t, db.CreateFeed(ctx, feed))

	err := db.CreateFeed(ctx, feed)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateResult(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	feed := &model.Feed{ID: "f", BlobRef: "r", Language: model.LanguageJS, ReturnType: model.ReturnNumber}
	require.NoError(t, db.CreateFeed(ctx, feed))

	require.NoError(t, db.UpdateResult(ctx, "f", model.NumberValue(42), 1000))

	got, err := db.GetFeed(ctx, "f")
	require.NoError(t, err)
	require.NotNil(t, got.LastResult)
	assert.Equal(t, model.NumberValue(42), *got.LastResult)
	assert.Equal(t, uint64(1000), got.LastUpdateMS)
}

func TestUpdateResultUnknownFeed(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateResult(context.Background(), "missing", model.NumberValue(1), 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBlobStore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	data := []byte(`return 40 + 2`)
	ref, err := db.PutBlob(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, BlobRef(data), ref)

	got, err := db.GetBlob(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// storing the same bytes again yields the same ref
	ref2, err := db.PutBlob(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, ref, ref2)
}

func TestGetBlobNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetBlob(context.Background(), "no-such-ref")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBlobRefIsContentAddressed(t *testing.T) {
	a := BlobRef([]byte("a"))
	b := BlobRef([]byte("b"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64) // hex of a 32-byte digest
	assert.Equal(t, a, BlobRef([]byte("a")))
}
