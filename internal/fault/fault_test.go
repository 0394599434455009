package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	err := New(NotFound, "match not found")
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, NotFound, code)

	wrapped := fmt.Errorf("handler: %w", err)
	code, ok = CodeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, NotFound, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsMatchesByCode(t *testing.T) {
	err := Newf(InvalidRequest, "team %s is not playing", "team_c")
	assert.ErrorIs(t, err, New(InvalidRequest, ""))
	assert.NotErrorIs(t, err, New(NotFound, ""))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(StoreUnavailable, "store read failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store read failed")
	assert.Contains(t, err.Error(), "connection reset")
}
