package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/config"
	"github.com/nguyentantai21042004/chunkflow/internal/logger"
	"github.com/nguyentantai21042004/chunkflow/internal/output"
	"github.com/nguyentantai21042004/chunkflow/internal/retry"
	"github.com/nguyentantai21042004/chunkflow/internal/scheduler"
	"github.com/nguyentantai21042004/chunkflow/pkg/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Four distinct 55-character sentences.
var sentences = []string{
	"Alpha describes the first idea in plainly simple words.",
	"Bravo continues with a second thought about the system.",
	"Charlie adds a third remark regarding chunk boundaries.",
	"Delta closes the text with one final closing statement.",
}

func noSleep(context.Context, time.Duration) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Gemini: config.GeminiConfig{APIKeys: []string{"test-key"}},
		Paths: config.PathsConfig{
			Input:    filepath.Join(dir, "input"),
			Output:   filepath.Join(dir, "output"),
			Archived: filepath.Join(dir, "archived"),
		},
		Output: config.OutputConfig{
			Formats: []string{output.FormatMarkdown, output.FormatText},
			Report:  true,
		},
	}
	require.NoError(t, cfg.Validate())

	// Two sentences per chunk, one sentence carried over.
	cfg.Chunking.BatchSizeTokens = 30
	cfg.Chunking.OverlapSizeTokens = config.Ptr(14)
	cfg.Retry.MaxRetries = config.Ptr(1)

	require.NoError(t, os.MkdirAll(cfg.Paths.Input, 0755))
	return cfg
}

func writeInput(t *testing.T, cfg *config.Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.Input, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type progress struct {
	mu     sync.Mutex
	events []scheduler.Event
}

func (p *progress) OnChunkResolved(_ context.Context, ev scheduler.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func identity(_ context.Context, ch chunker.Chunk, backend string) (retry.Response, error) {
	return retry.Response{Text: ch.Text, Backend: backend, Usage: map[string]int{"total_tokens": 10}}, nil
}

func TestConvertEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "story.txt", strings.Join(sentences, " "))
	prog := &progress{}

	p, err := New(cfg, executor.New(), logger.NewNop(),
		WithTransform(identity), WithObserver(prog), WithSleep(noSleep))
	require.NoError(t, err)

	res, err := p.Convert(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, res.Chunks, 3)
	assert.Equal(t, sentences[1], res.Chunks[1].Overlap)
	assert.Empty(t, res.Failed())

	want := sentences[0] + " " + sentences[1] + "\n\n" + sentences[2] + "\n\n" + sentences[3]
	assert.Equal(t, want, res.Text)

	assert.Equal(t, 3, res.Report.Chunks)
	assert.Equal(t, 3, res.Report.Succeeded)
	assert.Equal(t, map[string]int{"gemini-1.5-flash": 3}, res.Report.Backends)
	assert.Equal(t, map[string]int{"total_tokens": 30}, res.Report.Usage)

	out := filepath.Join(cfg.Paths.Output, "story")
	assert.Equal(t, []string{out + ".md", out + ".txt", out + ".report.yaml"}, res.Outputs)

	txt, err := os.ReadFile(out + ".txt")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", string(txt))

	report, err := output.ReadReport(out + ".report.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, path, report.Source)

	var stages []string
	var percents []float64
	for _, ev := range prog.events {
		stages = append(stages, ev.Stage)
		percents = append(percents, ev.Percent)
	}
	assert.Equal(t, []string{StageExtract, StageChunk, StageTransform, StageTransform, StageTransform, StageGenerate, StageComplete}, stages)
	assert.InDeltaSlice(t, []float64{10, 20, 40, 60, 80, 95, 100}, percents, 0.001)
}

func TestConvertFallbackAndGapMarker(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.GapMarker = "[gap]"
	cfg.Output.Report = false
	path := writeInput(t, cfg, "story.txt", strings.Join(sentences, " "))

	transform := func(ctx context.Context, ch chunker.Chunk, backend string) (retry.Response, error) {
		switch {
		case ch.Index == 1:
			return retry.Response{}, retry.NewError(retry.KindServer, backend, errors.New("boom"))
		case ch.Index == 2 && backend == "gemini-1.5-flash":
			return retry.Response{}, retry.NewError(retry.KindRateLimit, backend, errors.New("quota"))
		}
		return identity(ctx, ch, backend)
	}

	p, err := New(cfg, executor.New(), logger.NewNop(), WithTransform(transform), WithSleep(noSleep))
	require.NoError(t, err)

	res, err := p.Convert(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, res.Failed())
	assert.Equal(t, []int{1}, res.Report.Failed)
	assert.Equal(t, map[string]int{"gemini-1.5-flash": 1, "gemini-1.5-pro": 1}, res.Report.Backends)
	assert.Equal(t, res.Chunks[0].Text+"\n\n[gap]\n\n"+res.Chunks[2].Text, res.Text)
}

func TestConvertAuthAborts(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "story.txt", strings.Join(sentences, " "))

	var calls int
	transform := func(_ context.Context, _ chunker.Chunk, backend string) (retry.Response, error) {
		calls++
		return retry.Response{}, retry.NewError(retry.KindAuth, backend, errors.New("bad key"))
	}

	p, err := New(cfg, executor.New(), logger.NewNop(), WithTransform(transform), WithSleep(noSleep))
	require.NoError(t, err)

	res, err := p.Convert(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrAuth)

	var abort *scheduler.AbortError
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, 0, abort.ChunkIndex)
	assert.Equal(t, 1, calls)
	assert.True(t, res.Report.Aborted)
	assert.Equal(t, []int{1, 2}, res.Report.Skipped)
	assert.Empty(t, res.Outputs)
}

func TestConvertNothingTransformed(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "short.txt", "Only one sentence here.")

	transform := func(_ context.Context, _ chunker.Chunk, backend string) (retry.Response, error) {
		return retry.Response{}, retry.NewError(retry.KindServer, backend, errors.New("down"))
	}

	p, err := New(cfg, executor.New(), logger.NewNop(), WithTransform(transform), WithSleep(noSleep))
	require.NoError(t, err)

	_, err = p.Convert(context.Background(), path)
	assert.ErrorIs(t, err, ErrNothingTransformed)
}

func TestConvertEmptyDocument(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "empty.md", "  \n\n")

	p, err := New(cfg, executor.New(), logger.NewNop(), WithTransform(identity), WithSleep(noSleep))
	require.NoError(t, err)

	_, err = p.Convert(context.Background(), path)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestConvertStructureAwareSSML(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chunking.StructureAware = true
	cfg.Chunking.BatchSizeTokens = 8000
	cfg.Output.SSML = true
	path := writeInput(t, cfg, "guide.md", "# Intro\n\nFirst point. Second point.")

	var got []chunker.Chunk
	var mu sync.Mutex
	transform := func(ctx context.Context, ch chunker.Chunk, backend string) (retry.Response, error) {
		mu.Lock()
		got = append(got, ch)
		mu.Unlock()
		return identity(ctx, ch, backend)
	}

	p, err := New(cfg, executor.New(), logger.NewNop(), WithTransform(transform), WithSleep(noSleep))
	require.NoError(t, err)

	res, err := p.Convert(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, got, 1)
	require.Len(t, got[0].Elements, 2)
	assert.Equal(t, chunker.ElementHeading, got[0].Elements[0].Type)
	assert.Equal(t, "Intro<break time=\"1s\"/>\n\nFirst point.<break time=\"500ms\"/> Second point.", res.Text)
}

func TestProcessArchivesSource(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "story.txt", strings.Join(sentences, " "))

	p, err := New(cfg, executor.New(), logger.NewNop(), WithTransform(identity), WithSleep(noSleep))
	require.NoError(t, err)

	require.NoError(t, p.Process(context.Background(), path))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.Paths.Archived, "story.txt"))
	assert.NoError(t, err)

	// A second document with the same name does not overwrite the first.
	path = writeInput(t, cfg, "story.txt", strings.Join(sentences, " "))
	require.NoError(t, p.Process(context.Background(), path))

	entries, err := os.ReadDir(cfg.Paths.Archived)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
