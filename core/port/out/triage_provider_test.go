package out

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderErrorMatchesKind(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewProviderError("classify", ErrProviderCallFailed, cause)

	assert.ErrorIs(t, err, ErrProviderCallFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, "classify: provider call failed: connection reset", err.Error())

	wrapped := fmt.Errorf("remote: %w", err)
	assert.ErrorIs(t, wrapped, ErrProviderCallFailed)

	var pe *ProviderError
	assert.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, "classify", pe.Op)
}

func TestProviderErrorWithoutCause(t *testing.T) {
	err := NewProviderError("reply", ErrProviderResponseMalformed, nil)
	assert.ErrorIs(t, err, ErrProviderResponseMalformed)
	assert.Equal(t, "reply: provider response malformed", err.Error())
}
