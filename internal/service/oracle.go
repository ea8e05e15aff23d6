// Package service contains the business logic: the feed update pipeline and
// ad-hoc script execution, sitting between the HTTP handlers and the
// repository, sandbox and signer layers.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/oracle-enclave/internal/apperror"
	"github.com/sakif/oracle-enclave/internal/coerce"
	"github.com/sakif/oracle-enclave/internal/hostapi"
	"github.com/sakif/oracle-enclave/internal/model"
	"github.com/sakif/oracle-enclave/internal/repository"
	"github.com/sakif/oracle-enclave/internal/sandbox"
	"github.com/sakif/oracle-enclave/internal/signer"
)

// runFunc executes a script in isolation and returns its dynamic result.
// It is a field so tests can substitute a fake engine.
type runFunc func(lang model.Language, source string, api *hostapi.Surface) (any, error)

// OracleService runs the feed update pipeline (resolve, fetch, execute,
// coerce, sign) and ad-hoc script executions.
type OracleService struct {
	registry repository.FeedRegistry
	blobs    repository.BlobStore
	signer   signer.Signer
	api      *hostapi.Surface
	logger   *slog.Logger

	run   runFunc
	nowMS func() uint64
}

// NewOracleService creates the service with production collaborators.
func NewOracleService(registry repository.FeedRegistry, blobs repository.BlobStore, sig signer.Signer, api *hostapi.Surface, logger *slog.Logger) *OracleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OracleService{
		registry: registry,
		blobs:    blobs,
		signer:   sig,
		api:      api,
		logger:   logger,
		run:      sandbox.RunIsolated,
		nowMS:    func() uint64 { return uint64(time.Now().UnixMilli()) },
	}
}

// ProcessFeed runs the full pipeline for feedID and returns the signed
// envelope carrying the coerced result.
//
// If the feed declares an update cadence and the previous result is still
// fresh, the stored result is re-signed with the current timestamp instead
// of re-executing the script.
func (s *OracleService) ProcessFeed(ctx context.Context, feedID string) (*model.SignedEnvelope, error) {
	feed, err := s.registry.GetFeed(ctx, feedID)
	if err != nil {
		return nil, stageErr("resolve", err)
	}

	now := s.nowMS()
	if feed.LastResult != nil && feed.UpdateCadenceMS > 0 && now-feed.LastUpdateMS < feed.UpdateCadenceMS {
		s.logger.Debug("serving cached feed result",
			slog.String("feed_id", feedID),
			slog.Uint64("age_ms", now-feed.LastUpdateMS))
		env, err := s.signer.Sign(*feed.LastResult, now, model.IntentProcessData)
		if err != nil {
			return nil, apperror.Internal("sign", err)
		}
		return env, nil
	}

	source, err := s.blobs.GetBlob(ctx, feed.BlobRef)
	if err != nil {
		return nil, stageErr("fetch", err)
	}

	raw, err := s.run(feed.Language, string(source), s.api)
	if err != nil {
		return nil, scriptErr("execute", err)
	}

	value, err := coerce.Coerce(raw, feed.ReturnType)
	if err != nil {
		return nil, apperror.Execution("coerce", err)
	}

	if err := s.registry.UpdateResult(ctx, feed.ID, value, now); err != nil {
		return nil, apperror.Internal("store", err)
	}

	env, err := s.signer.Sign(value, now, model.IntentProcessData)
	if err != nil {
		return nil, apperror.Internal("sign", err)
	}

	s.logger.Info("processed feed",
		slog.String("feed_id", feedID),
		slog.String("return_type", string(feed.ReturnType)),
		slog.String("result", value.String()))
	return env, nil
}

// ExecuteCode runs an ad-hoc script and coerces the result. Failures are
// reported in-band on the result rather than as an error, so callers always
// get a response body.
func (s *OracleService) ExecuteCode(ctx context.Context, language, source, returnType string) *model.ExecuteCodeResult {
	execID := xid.New().String()
	res := &model.ExecuteCodeResult{
		Result:      model.StringValue(""),
		ExecutionID: execID,
	}

	lang, err := model.ParseLanguage(language)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	rt, err := model.ParseReturnType(returnType)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	raw, err := s.run(lang, source, s.api)
	if err != nil {
		s.logger.Warn("ad-hoc execution failed",
			slog.String("execution_id", execID), slog.String("error", err.Error()))
		res.Error = err.Error()
		return res
	}

	value, err := coerce.Coerce(raw, rt)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	s.logger.Info("executed ad-hoc script",
		slog.String("execution_id", execID),
		slog.String("language", string(lang)),
		slog.String("result", value.String()))
	res.Result = value
	res.Success = true
	return res
}

// AttestationKey returns the hex-encoded public key results are signed with.
func (s *OracleService) AttestationKey() string {
	return s.signer.PublicKeyHex()
}

// stageErr tags err with the pipeline stage it came from, preserving
// already-classified errors.
func stageErr(stage string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Stage == "" {
			appErr.Stage = stage
		}
		return appErr
	}
	return apperror.Internal(stage, err)
}

// scriptErr classifies an execution failure: isolation breakage is an
// internal fault, everything else is the script's. Already-classified
// errors keep their category.
func scriptErr(stage string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Stage == "" {
			appErr.Stage = stage
		}
		return appErr
	}

	var se *sandbox.ScriptError
	if errors.As(err, &se) && se.Kind == sandbox.KindIsolation {
		return apperror.Internal(stage, err)
	}
	return apperror.Execution(stage, err)
}
