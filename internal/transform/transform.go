package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/retry"
	"google.golang.org/genai"
)

var (
	ErrNoAPIKey      = errors.New("no Gemini API key configured")
	ErrEmptyResponse = errors.New("empty response from Gemini")
)

// Transform sends one chunk to the backend model. Errors are returned as
// *retry.Error so the orchestrator can apply its policy.
func (t *implTransformer) Transform(ctx context.Context, chunk chunker.Chunk, backend string) (retry.Response, error) {
	key, ok := t.key()
	if !ok {
		return retry.Response{}, retry.NewError(retry.KindAuth, backend, ErrNoAPIKey)
	}

	contents := genai.Text(t.prompts.Render(chunk))
	result, err := t.generate(ctx, key, backend, contents, t.config())
	if err != nil {
		cerr := Classify(backend, err)
		if retry.KindOf(cerr) == retry.KindRateLimit {
			t.rotate(ctx, key)
		}
		return retry.Response{}, cerr
	}

	text := responseText(result)
	if text == "" {
		return retry.Response{}, retry.NewError(retry.KindOther, backend, ErrEmptyResponse)
	}

	return retry.Response{
		Text:    text,
		Backend: backend,
		Usage:   usage(result),
	}, nil
}

func (t *implTransformer) config() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(t.prompts.System, genai.RoleUser),
		MaxOutputTokens:   t.params.MaxOutputTokens,
	}
	if t.params.Temperature > 0 {
		cfg.Temperature = genai.Ptr(t.params.Temperature)
	}
	if t.params.TopP > 0 {
		cfg.TopP = genai.Ptr(t.params.TopP)
	}
	if t.params.TopK > 0 {
		cfg.TopK = genai.Ptr(t.params.TopK)
	}
	return cfg
}

func (t *implTransformer) key() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.keys) == 0 {
		return "", false
	}
	return t.keys[t.currentKey], true
}

// rotate advances to the next key unless another goroutine already moved
// past the key that failed.
func (t *implTransformer) rotate(ctx context.Context, failed string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.keys) < 2 || t.keys[t.currentKey] != failed {
		return
	}
	t.currentKey = (t.currentKey + 1) % len(t.keys)
	t.logger.Warn(ctx, "API key rate limited, rotating to key %d/%d", t.currentKey+1, len(t.keys))
}

// generateWithClient calls Gemini through a client cached per API key.
func (t *implTransformer) generateWithClient(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := t.client(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return client.Models.GenerateContent(ctx, model, contents, cfg)
}

func (t *implTransformer) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.clients[apiKey]; ok {
		return c, nil
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	t.clients[apiKey] = c
	return c, nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func usage(result *genai.GenerateContentResponse) map[string]int {
	md := result.UsageMetadata
	if md == nil {
		return nil
	}
	return map[string]int{
		"prompt_tokens":     int(md.PromptTokenCount),
		"candidates_tokens": int(md.CandidatesTokenCount),
		"total_tokens":      int(md.TotalTokenCount),
	}
}
