package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorIs(t *testing.T) {
	err := NewValidationError("months", -1, "must be non-negative")

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "months")
}

func TestSourceErrorClassification(t *testing.T) {
	throttled := NewSourceError("messagecenter", 429, "slow down")
	assert.True(t, IsRateLimited(throttled))
	assert.False(t, IsSourceUnavailable(throttled))

	down := NewSourceError("roadmap", 503, "maintenance")
	assert.True(t, IsSourceUnavailable(down))
	assert.False(t, IsRateLimited(down))

	notFound := NewSourceError("roadmap", 404, "gone")
	assert.False(t, IsSourceUnavailable(notFound))
}

func TestWrapSourcePreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapSource("webfeed", 0, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "webfeed")
	assert.Nil(t, WrapSource("webfeed", 0, nil))
}

func TestWrapParse(t *testing.T) {
	cause := errors.New("unexpected token")
	err := WrapParse("json", "roadmap", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "json")
	assert.Nil(t, WrapParse("json", "roadmap", nil))
}

func TestWrapIO(t *testing.T) {
	cause := errors.New("permission denied")
	err := WrapIO("write", "/tmp/report.json", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "/tmp/report.json")
	assert.Nil(t, WrapIO("write", "x", nil))
}

func TestFetchErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := &FetchError{RecordID: "MC1", URL: "https://example.com", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "MC1")
}

func TestAuthenticationErrorIs(t *testing.T) {
	err := &AuthenticationError{Source: "messagecenter", Method: "bearer", Message: "token expired"}
	assert.True(t, errors.Is(err, ErrCredentialsRequired))
}

func TestWrappedSentinelSurvivesFmt(t *testing.T) {
	err := fmt.Errorf("fetch failed: %w", ErrRateLimited)
	assert.True(t, IsRateLimited(err))
}
