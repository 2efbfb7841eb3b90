package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	err := MissingField("text")
	assert.Equal(t, "[MISSING_FIELD] missing required field: text", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Equal(t, "text", err.Details["field"])

	wrapped := ExternalError("openai", errors.New("dial tcp: refused"))
	assert.Contains(t, wrapped.Error(), "dial tcp: refused")
	assert.Equal(t, http.StatusBadGateway, wrapped.Status)
}

func TestAsAppError(t *testing.T) {
	orig := NotFound("job")
	chained := fmt.Errorf("lookup: %w", orig)

	assert.True(t, IsAppError(chained))
	assert.Same(t, orig, AsAppError(chained))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(chained))

	plain := errors.New("plain")
	assert.False(t, IsAppError(plain))
	assert.Equal(t, CodeInternalError, AsAppError(plain).Code)
	assert.ErrorIs(t, AsAppError(plain), plain)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(plain))
}

func TestWithDetail(t *testing.T) {
	err := PayloadTooLarge(1024).WithDetail("filename", "mail.pdf")
	assert.Equal(t, int64(1024), err.Details["limit_bytes"])
	assert.Equal(t, "mail.pdf", err.Details["filename"])
	assert.Equal(t, http.StatusRequestEntityTooLarge, err.Status)
}
