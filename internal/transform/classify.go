package transform

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/chunkflow/internal/retry"
	"google.golang.org/genai"
)

const (
	retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"
	errorInfoType = "type.googleapis.com/google.rpc.ErrorInfo"
)

// Classify converts a raw Gemini error into a *retry.Error. This is the only
// place where failures are classified.
func Classify(backend string, err error) error {
	if err == nil {
		return nil
	}

	var rerr *retry.Error
	if errors.As(err, &rerr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return retry.NewError(retry.KindTimeout, backend, err)
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return retry.NewError(retry.KindOther, backend, err)
	}

	e := retry.NewError(kindForStatus(apiErr), backend, err)
	e.StatusCode = apiErr.Code
	if e.Kind == retry.KindRateLimit {
		e.RetryAfter = retryDelay(apiErr.Details)
	}
	return e
}

func kindForStatus(apiErr genai.APIError) retry.Kind {
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return retry.KindAuth
	case apiErr.Code == http.StatusBadRequest && invalidKey(apiErr.Details):
		return retry.KindAuth
	case apiErr.Code == http.StatusTooManyRequests:
		return retry.KindRateLimit
	case apiErr.Code == http.StatusRequestTimeout || apiErr.Code == http.StatusGatewayTimeout:
		return retry.KindTimeout
	case apiErr.Code >= 500:
		return retry.KindServer
	default:
		return retry.KindOther
	}
}

// invalidKey reports an ErrorInfo detail with reason API_KEY_INVALID, which
// Gemini sends with status 400 instead of 401.
func invalidKey(details []map[string]any) bool {
	for _, d := range details {
		if d["@type"] != errorInfoType {
			continue
		}
		if reason, _ := d["reason"].(string); reason == "API_KEY_INVALID" {
			return true
		}
	}
	return false
}

// retryDelay extracts the RetryInfo hint, e.g. {"retryDelay": "17s"}.
func retryDelay(details []map[string]any) time.Duration {
	for _, d := range details {
		if d["@type"] != retryInfoType {
			continue
		}
		raw, _ := d["retryDelay"].(string)
		if raw == "" {
			continue
		}
		if delay, err := time.ParseDuration(strings.TrimSpace(raw)); err == nil && delay > 0 {
			return delay
		}
	}
	return 0
}
