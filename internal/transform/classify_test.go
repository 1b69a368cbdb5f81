package transform

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nguyentantai21042004/chunkflow/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		kind       retry.Kind
		status     int
		retryAfter time.Duration
	}{
		{
			name:   "unauthorized",
			err:    genai.APIError{Code: 401, Message: "bad credentials"},
			kind:   retry.KindAuth,
			status: 401,
		},
		{
			name:   "forbidden",
			err:    genai.APIError{Code: 403},
			kind:   retry.KindAuth,
			status: 403,
		},
		{
			name: "invalid key reported as bad request",
			err: genai.APIError{Code: 400, Details: []map[string]any{
				{"@type": errorInfoType, "reason": "API_KEY_INVALID"},
			}},
			kind:   retry.KindAuth,
			status: 400,
		},
		{
			name:   "plain bad request",
			err:    genai.APIError{Code: 400},
			kind:   retry.KindOther,
			status: 400,
		},
		{
			name: "rate limited with hint",
			err: genai.APIError{Code: 429, Details: []map[string]any{
				{"@type": "type.googleapis.com/google.rpc.QuotaFailure"},
				{"@type": retryInfoType, "retryDelay": "17s"},
			}},
			kind:       retry.KindRateLimit,
			status:     429,
			retryAfter: 17 * time.Second,
		},
		{
			name:   "rate limited without hint",
			err:    genai.APIError{Code: 429},
			kind:   retry.KindRateLimit,
			status: 429,
		},
		{
			name:   "server error",
			err:    genai.APIError{Code: 503},
			kind:   retry.KindServer,
			status: 503,
		},
		{
			name:   "gateway timeout",
			err:    genai.APIError{Code: 504},
			kind:   retry.KindTimeout,
			status: 504,
		},
		{
			name:   "wrapped api error",
			err:    fmt.Errorf("generate: %w", genai.APIError{Code: 500}),
			kind:   retry.KindServer,
			status: 500,
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			kind: retry.KindTimeout,
		},
		{
			name: "unknown",
			err:  errors.New("connection reset"),
			kind: retry.KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("gemini-1.5-flash", tt.err)

			var rerr *retry.Error
			require.ErrorAs(t, got, &rerr)
			assert.Equal(t, tt.kind, rerr.Kind)
			assert.Equal(t, tt.status, rerr.StatusCode)
			assert.Equal(t, tt.retryAfter, rerr.RetryAfter)
			assert.Equal(t, "gemini-1.5-flash", rerr.Backend)
			assert.Equal(t, tt.err, rerr.Err)
		})
	}
}

func TestClassifyKeepsExistingClass(t *testing.T) {
	orig := retry.NewError(retry.KindServer, "a", errors.New("x"))
	assert.Same(t, orig, Classify("b", orig))
	assert.NoError(t, Classify("b", nil))
}
