package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	cause := stdErrors.New("boom")
	err := FromError(cause)
	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, cause)
}

func TestFromErrorKeepsTyped(t *testing.T) {
	typed := Clone(ErrNotFound, "course not found")
	assert.Same(t, typed, FromError(typed))
	assert.Equal(t, "course not found", typed.Error())
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestIsStatus(t *testing.T) {
	wrapped := Wrap(stdErrors.New("dup"), ErrConflict.Code, ErrConflict.Status, "course already exists")
	assert.True(t, IsStatus(wrapped, http.StatusConflict))
	assert.False(t, IsStatus(wrapped, http.StatusNotFound))
	assert.False(t, IsStatus(stdErrors.New("plain"), http.StatusConflict))
	assert.Equal(t, "course already exists: dup", wrapped.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	cloned := Clone(ErrNotFound, "course not found")
	wrapped := WrapAs(stdErrors.New("no rows"), ErrNotFound, "course not found")

	assert.ErrorIs(t, cloned, ErrNotFound)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrConflict)
	assert.Equal(t, http.StatusNotFound, wrapped.Status)
}
