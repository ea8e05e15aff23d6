package service

import (
	"context"
	"log/slog"

	"github.com/rs/xid"

	"github.com/sakif/oracle-enclave/internal/apperror"
	"github.com/sakif/oracle-enclave/internal/model"
	"github.com/sakif/oracle-enclave/internal/repository"
)

// CreateFeedParams carries the inputs for registering a feed. Exactly one of
// Script and BlobRef must be set: an inline script is stored in the local
// blob cache, a blob ref points at an already published payload.
type CreateFeedParams struct {
	ID              string
	Language        string
	ReturnType      string
	Script          string
	BlobRef         string
	UpdateCadenceMS uint64
}

// FeedService registers and looks up feed schema records.
type FeedService struct {
	registry repository.FeedRegistry
	blobs    repository.BlobWriter
	logger   *slog.Logger
}

// NewFeedService creates the admin-facing feed service.
func NewFeedService(registry repository.FeedRegistry, blobs repository.BlobWriter, logger *slog.Logger) *FeedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedService{registry: registry, blobs: blobs, logger: logger}
}

// CreateFeed validates params, stores an inline script if given, and
// registers the feed. A missing ID gets a generated one.
func (s *FeedService) CreateFeed(ctx context.Context, params CreateFeedParams) (*model.Feed, error) {
	lang, err := model.ParseLanguage(params.Language)
	if err != nil {
		return nil, apperror.ValidationFailed("language", err.Error())
	}
	rt, err := model.ParseReturnType(params.ReturnType)
	if err != nil {
		return nil, apperror.ValidationFailed("return_type", err.Error())
	}

	if (params.Script == "") == (params.BlobRef == "") {
		return nil, apperror.ValidationFailed("script", "exactly one of script and blob_ref must be set")
	}

	blobRef := params.BlobRef
	if params.Script != "" {
		blobRef, err = s.blobs.PutBlob(ctx, []byte(params.Script))
		if err != nil {
			return nil, apperror.Internal("store", err)
		}
	}

	id := params.ID
	if id == "" {
		id = xid.New().String()
	}

	feed := &model.Feed{
		ID:              id,
		BlobRef:         blobRef,
		Language:        lang,
		ReturnType:      rt,
		UpdateCadenceMS: params.UpdateCadenceMS,
	}
	if err := s.registry.CreateFeed(ctx, feed); err != nil {
		return nil, err
	}

	s.logger.Info("created feed",
		slog.String("feed_id", feed.ID),
		slog.String("language", string(feed.Language)),
		slog.String("blob_ref", feed.BlobRef))
	return feed, nil
}

// GetFeed returns the feed schema record for id.
func (s *FeedService) GetFeed(ctx context.Context, id string) (*model.Feed, error) {
	return s.registry.GetFeed(ctx, id)
}
