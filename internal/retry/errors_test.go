package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"classified", NewError(KindServer, "m", errors.New("boom")), KindServer},
		{"wrapped classified", fmt.Errorf("call: %w", NewError(KindAuth, "m", nil)), KindAuth},
		{"bare deadline", context.DeadlineExceeded, KindTimeout},
		{"plain", errors.New("eof"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorIsSentinels(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(KindRateLimit, "m", errors.New("429")))
	assert.ErrorIs(t, err, ErrRateLimit)
	assert.NotErrorIs(t, err, ErrAuth)
	assert.NotErrorIs(t, err, ErrServer)
}

func TestErrorMessage(t *testing.T) {
	e := &Error{Kind: KindServer, Backend: "gemini-1.5-pro", StatusCode: 503, Err: errors.New("overloaded")}
	assert.Equal(t, "gemini-1.5-pro: server (status 503): overloaded", e.Error())
}

func TestRetryAfterOf(t *testing.T) {
	e := NewError(KindRateLimit, "m", nil)
	e.RetryAfter = 3 * time.Second
	assert.Equal(t, 3*time.Second, RetryAfterOf(fmt.Errorf("x: %w", e)))
	assert.Zero(t, RetryAfterOf(errors.New("plain")))
}
