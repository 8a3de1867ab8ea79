package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsComparesCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Forbidden("not your order"))

	assert.ErrorIs(t, err, ErrForbidden)
	assert.False(t, errors.Is(err, ErrNotFound))

	he, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Status)
	assert.Equal(t, "not your order", he.Message)
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(errors.New("x"))
	assert.False(t, ok)
}
