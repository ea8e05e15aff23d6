package hostapi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	t.Run("integral numbers decode as int64", func(t *testing.T) {
		v, err := DecodeJSON(`{"price": 109, "ok": true}`)
		require.NoError(t, err)
		m, ok := v.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, int64(109), m["price"])
		assert.Equal(t, true, m["ok"])
	})

	t.Run("fractional numbers decode as float64", func(t *testing.T) {
		v, err := DecodeJSON(`[1.5, 2]`)
		require.NoError(t, err)
		assert.Equal(t, []any{1.5, int64(2)}, v)
	})

	t.Run("invalid document", func(t *testing.T) {
		_, err := DecodeJSON(`{"unterminated`)
		assert.Error(t, err)
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, int64(3), Normalize(float64(3)))
	assert.Equal(t, 3.5, Normalize(3.5))
	assert.Equal(t, int64(7), Normalize(7))
	assert.Equal(t, []any{int64(1), "a"}, Normalize([]any{float64(1), "a"}))
	assert.Equal(t, map[string]any{"n": int64(2)}, Normalize(map[string]any{"n": float64(2)}))
	assert.Nil(t, Normalize(nil))
}

func TestNormalizeNonFiniteFloats(t *testing.T) {
	assert.Nil(t, Normalize(math.NaN()))
	assert.Nil(t, Normalize(math.Inf(1)))
	assert.Nil(t, Normalize(math.Inf(-1)))
	assert.Equal(t, []any{nil, int64(1)}, Normalize([]any{math.NaN(), float64(1)}))
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "abc", Text("abc"))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, "42", Text(int64(42)))
	assert.Equal(t, "3.25", Text(3.25))
	assert.Equal(t, `[1,"a"]`, Text([]any{int64(1), "a"}))
	assert.Equal(t, `{"k":1}`, Text(map[string]any{"k": int64(1)}))
}
