package hostapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOkIsErr(t *testing.T) {
	assert.True(t, IsErr("Error: boom"))
	assert.True(t, IsErr("Err(boom)"))
	assert.False(t, IsErr("Ok(42)"))
	assert.False(t, IsErr("plain value"))
	assert.False(t, IsErr(int64(42)))

	assert.True(t, IsOk("Ok(42)"))
	assert.True(t, IsOk("42"))
	assert.False(t, IsOk("Error: boom"))
}

func TestUnwrap(t *testing.T) {
	assert.Equal(t, "42", Unwrap("Ok(42)"))
	assert.Equal(t, "Error: boom", Unwrap("Err(boom)"))
	assert.Equal(t, int64(7), Unwrap(int64(7)))
	assert.Equal(t, "plain", Unwrap("plain"))
}

func TestUnwrapText(t *testing.T) {
	assert.Equal(t, "42", UnwrapText("Ok(42)"))
	// one layer of quoting is stripped from a wrapped success
	assert.Equal(t, `{"a":1}`, UnwrapText(`Ok("{"a":1}")`))
	assert.Equal(t, "Error: boom", UnwrapText("Err(boom)"))
	assert.Equal(t, "Error: boom", UnwrapText("Error: boom"))
	assert.Equal(t, "plain", UnwrapText("plain"))
}

func TestErrOf(t *testing.T) {
	assert.Equal(t, "boom", ErrOf("Err(boom)"))
	assert.Equal(t, "boom", ErrOf("Error: boom"))
	assert.Nil(t, ErrOf("Ok(42)"))
	assert.Nil(t, ErrOf("plain"))
}

func TestErrf(t *testing.T) {
	assert.Equal(t, "Error: status 502", Errf("status %d", 502))
	assert.True(t, IsErrText(Errf("anything")))
}
