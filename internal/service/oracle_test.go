package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/oracle-enclave/internal/apperror"
	"github.com/sakif/oracle-enclave/internal/hostapi"
	"github.com/sakif/oracle-enclave/internal/model"
	"github.com/sakif/oracle-enclave/internal/sandbox"
)

type recordedUpdate struct {
	id     string
	result model.OracleValue
	ts     uint64
}

type mockRegistry struct {
	feeds   map[string]*model.Feed
	updates []recordedUpdate
}

func (m *mockRegistry) GetFeed(_ context.Context, id string) (*model.Feed, error) {
	feed, ok := m.feeds[id]
	if !ok {
		return nil, apperror.NotFound("feed", id)
	}
	return feed, nil
}

func (m *mockRegistry) CreateFeed(_ context.Context, feed *model.Feed) error {
	m.feeds[feed.ID] = feed
	return nil
}

func (m *mockRegistry) UpdateResult(_ context.Context, id string, result model.OracleValue, ts uint64) error {
	if _, ok := m.feeds[id]; !ok {
		return apperror.NotFound("feed", id)
	}
	m.updates = append(m.updates, recordedUpdate{id: id, result: result, ts: ts})
	return nil
}

type mockBlobs struct {
	blobs map[string][]byte
}

func (m *mockBlobs) GetBlob(_ context.Context, ref string) ([]byte, error) {
	b, ok := m.blobs[ref]
	if !ok {
		return nil, apperror.NotFound("blob", ref)
	}
	return b, nil
}

type mockSigner struct {
	signed []model.IntentMessage
}

func (m *mockSigner) Sign(result model.OracleValue, ts uint64, intent model.IntentScope) (*model.SignedEnvelope, error) {
	msg := model.IntentMessage{IntentScope: intent, TimestampMS: ts, Data: model.UpdateResponse{Result: result}}
	m.signed = append(m.signed, msg)
	return &model.SignedEnvelope{Response: msg, Signature: "sig", PublicKey: "pk"}, nil
}

func (m *mockSigner) PublicKeyHex() string { return "pk" }

const testNowMS = uint64(1_700_000_000_000)

func newTestService(t *testing.T) (*OracleService, *mockRegistry, *mockBlobs, *mockSigner) {
	t.Helper()
	reg := &mockRegistry{feeds: map[string]*model.Feed{}}
	blobs := &mockBlobs{blobs: map[string][]byte{}}
	sig := &mockSigner{}
	svc := NewOracleService(reg, blobs, sig, hostapi.New(nil, nil), nil)
	svc.nowMS = func() uint64 { return testNowMS }
	return svc, reg, blobs, sig
}

func TestProcessFeed(t *testing.T) {
	svc, reg, blobs, sig := newTestService(t)
	reg.feeds["btc-usd"] = &model.Feed{
		ID:         "btc-usd",
		BlobRef:    "ref1",
		Language:   model.LanguageJS,
		ReturnType: model.ReturnNumber,
	}
	blobs.blobs["ref1"] = []byte(`40 + 2`)

	env, err := svc.ProcessFeed(context.Background(), "btc-usd")
	require.NoError(t, err)

	assert.Equal(t, model.NumberValue(42), env.Response.Data.Result)
	assert.Equal(t, model.IntentProcessData, env.Response.IntentScope)
	assert.Equal(t, testNowMS, env.Response.TimestampMS)

	require.Len(t, reg.updates, 1)
	assert.Equal(t, "btc-usd", reg.updates[0].id)
	assert.Equal(t, model.NumberValue(42), reg.updates[0].result)
	assert.Equal(t, testNowMS, reg.updates[0].ts)

	require.Len(t, sig.signed, 1)
}

func TestProcessFeedStages(t *testing.T) {
	t.Run("unknown feed fails at resolve", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.ProcessFeed(context.Background(), "nope")
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "resolve", appErr.Stage)
	})

	t.Run("missing blob fails at fetch", func(t *testing.T) {
		svc, reg, _, _ := newTestService(t)
		reg.feeds["f"] = &model.Feed{ID: "f", BlobRef: "gone", Language: model.LanguageJS, ReturnType: model.ReturnString}

		_, err := svc.ProcessFeed(context.Background(), "f")
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "fetch", appErr.Stage)
	})

	t.Run("broken script fails at execute", func(t *testing.T) {
		svc, reg, blobs, _ := newTestService(t)
		reg.feeds["f"] = &model.Feed{ID: "f", BlobRef: "r", Language: model.LanguageJS, ReturnType: model.ReturnString}
		blobs.blobs["r"] = []byte(`no_such_function()`)

		_, err := svc.ProcessFeed(context.Background(), "f")
		assert.ErrorIs(t, err, apperror.ErrExecution)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "execute", appErr.Stage)
	})

	t.Run("isolation failure is internal", func(t *testing.T) {
		svc, reg, blobs, _ := newTestService(t)
		reg.feeds["f"] = &model.Feed{ID: "f", BlobRef: "r", Language: model.LanguageJS, ReturnType: model.ReturnString}
		blobs.blobs["r"] = []byte(`1`)
		svc.run = func(model.Language, string, *hostapi.Surface) (any, error) {
			return nil, &sandbox.ScriptError{Kind: sandbox.KindIsolation, Message: "worker died"}
		}

		_, err := svc.ProcessFeed(context.Background(), "f")
		assert.ErrorIs(t, err, apperror.ErrInternal)
	})

	t.Run("out-of-contract value fails at coerce", func(t *testing.T) {
		svc, reg, blobs, _ := newTestService(t)
		reg.feeds["f"] = &model.Feed{ID: "f", BlobRef: "r", Language: model.LanguageJS, ReturnType: model.ReturnNumber}
		blobs.blobs["r"] = []byte(`"not a number"`)

		_, err := svc.ProcessFeed(context.Background(), "f")
		assert.ErrorIs(t, err, apperror.ErrExecution)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "coerce", appErr.Stage)
	})
}

func TestProcessFeedCadenceGate(t *testing.T) {
	svc, reg, _, _ := newTestService(t)
	last := model.NumberValue(99)
	reg.feeds["f"] = &model.Feed{
		ID:              "f",
		BlobRef:         "r",
		Language:        model.LanguageJS,
		ReturnType:      model.ReturnNumber,
		LastResult:      &last,
		UpdateCadenceMS: 60_000,
		LastUpdateMS:    testNowMS - 1_000,
	}

	ran := false
	svc.run = func(model.Language, string, *hostapi.Surface) (any, error) {
		ran = true
		return int64(1), nil
	}

	env, err := svc.ProcessFeed(context.Background(), "f")
	require.NoError(t, err)
	assert.False(t, ran, "fresh result must not re-execute the script")
	assert.Equal(t, model.NumberValue(99), env.Response.Data.Result)
	assert.Empty(t, reg.updates)
}

func TestProcessFeedCadenceExpired(t *testing.T) {
	svc, reg, blobs, _ := newTestService(t)
	last := model.NumberValue(99)
	reg.feeds["f"] = &model.Feed{
		ID:              "f",
		BlobRef:         "r",
		Language:        model.LanguageJS,
		ReturnType:      model.ReturnNumber,
		LastResult:      &last,
		UpdateCadenceMS: 60_000,
		LastUpdateMS:    testNowMS - 120_000,
	}
	blobs.blobs["r"] = []byte(`7`)

	env, err := svc.ProcessFeed(context.Background(), "f")
	require.NoError(t, err)
	assert.Equal(t, model.NumberValue(7), env.Response.Data.Result)
	require.Len(t, reg.updates, 1)
}

func TestExecuteCode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		res := svc.ExecuteCode(context.Background(), "js", `"  hello "`, "STRING")
		assert.True(t, res.Success)
		assert.Empty(t, res.Error)
		assert.NotEmpty(t, res.ExecutionID)
		assert.Equal(t, model.StringValue("hello"), res.Result)
	})

	t.Run("unknown language reported in band", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		res := svc.ExecuteCode(context.Background(), "rhai", `1`, "NUMBER")
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "rhai")
		assert.Equal(t, model.StringValue(""), res.Result)
	})

	t.Run("unknown return type reported in band", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		res := svc.ExecuteCode(context.Background(), "js", `1`, "FLOAT")
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "FLOAT")
	})

	t.Run("script failure reported in band", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		res := svc.ExecuteCode(context.Background(), "js", `boom(`, "STRING")
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})

	t.Run("coercion failure reported in band", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		res := svc.ExecuteCode(context.Background(), "js", `"abc"`, "NUMBER")
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})

	t.Run("division by zero is a coercion failure not an isolation fault", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		res := svc.ExecuteCode(context.Background(), "js", `0 / 0`, "NUMBER")
		assert.False(t, res.Success)
		assert.NotContains(t, res.Error, "isolation")

		res = svc.ExecuteCode(context.Background(), "js", `1 / 0`, "NUMBER")
		assert.False(t, res.Success)
		assert.NotContains(t, res.Error, "isolation")

		// nil has the empty textual form, so STRING still succeeds
		res = svc.ExecuteCode(context.Background(), "js", `0 / 0`, "STRING")
		assert.True(t, res.Success)
		assert.Equal(t, model.StringValue(""), res.Result)
	})

	t.Run("execution ids are unique", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		a := svc.ExecuteCode(context.Background(), "js", `1`, "NUMBER")
		b := svc.ExecuteCode(context.Background(), "js", `1`, "NUMBER")
		assert.NotEqual(t, a.ExecutionID, b.ExecutionID)
	})
}

func TestStageErrPreservesClassification(t *testing.T) {
	err := stageErr("fetch", apperror.Transport("", errors.New("conn refused")))
	assert.ErrorIs(t, err, apperror.ErrTransport)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "fetch", appErr.Stage)
}
