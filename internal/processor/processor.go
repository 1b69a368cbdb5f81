package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
	"github.com/nguyentantai21042004/chunkflow/internal/output"
	"github.com/nguyentantai21042004/chunkflow/internal/scheduler"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Process converts one document and archives its source.
func (p *implProcessor) Process(ctx context.Context, path string) error {
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting document processing: %s", path)
	p.logger.Info(ctx, "========================================")

	res, err := p.Convert(ctx, path)
	if err != nil {
		return err
	}

	if err := p.moveToArchived(ctx, path); err != nil {
		p.logger.Warn(ctx, "Failed to move source to archived folder: %v", err)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed: %d/%d chunks", res.Report.Succeeded, res.Report.Chunks)
	for _, out := range res.Outputs {
		p.logger.Info(ctx, "Output: %s", out)
	}
	p.logger.Info(ctx, "Processing time: %s", res.Report.Duration)
	p.logger.Info(ctx, "========================================")

	return nil
}

// Convert extracts, chunks, transforms, reconciles and writes one document.
func (p *implProcessor) Convert(ctx context.Context, path string) (Result, error) {
	start := p.now()

	ctx, span := p.tracer.Start(ctx, "document", trace.WithAttributes(attribute.String("document.path", path)))
	defer span.End()

	res, err := p.convert(ctx, path, start)
	res.Report.StartedAt = start
	res.Report.Duration = p.now().Sub(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	span.SetAttributes(
		attribute.Int("document.chunks", res.Report.Chunks),
		attribute.Int("document.failed_chunks", len(res.Report.Failed)),
	)
	return res, nil
}

func (p *implProcessor) convert(ctx context.Context, path string, start time.Time) (Result, error) {
	var res Result

	doc, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return res, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}
	p.logger.Info(ctx, "Extracted %s: %d estimated tokens", doc.Title, chunker.EstimateTokens(doc.Text))
	p.stage(ctx, StageExtract, PercentExtract)

	if p.cfg.Chunking.StructureAware && len(doc.Elements) > 0 {
		res.Chunks = p.chunker.SplitElements(doc.Elements)
	} else {
		res.Chunks = p.chunker.Split(doc.Text)
	}
	p.logger.Info(ctx, "Created %d chunks", len(res.Chunks))
	p.stage(ctx, StageChunk, PercentChunk)

	results, runErr := p.scheduler.Run(ctx, res.Chunks, p.transform)
	res.Results = results
	res.Report = p.report(doc.Path, doc.Title, start, results, runErr)
	if runErr != nil {
		return res, fmt.Errorf("transform %s: %w", doc.Title, runErr)
	}

	if failed := len(res.Report.Failed); failed > 0 {
		p.logger.Warn(ctx, "%d chunks failed to process: %v", failed, res.Report.Failed)
	}
	if res.Report.Succeeded == 0 {
		return res, fmt.Errorf("%s: %w", doc.Title, ErrNothingTransformed)
	}

	text := p.reconciler.Reconcile(results)
	res.Text = output.Speech(text, p.cfg.Output.SSML, p.cfg.Output.InsertPauses)
	p.logger.Info(ctx, "Final text: %d estimated tokens", chunker.EstimateTokens(res.Text))
	p.stage(ctx, StageGenerate, PercentGenerate)

	res.Report.Duration = p.now().Sub(start)
	outputs, err := p.writer.Write(ctx, output.Document{
		Title:  doc.Title,
		Text:   res.Text,
		Report: res.Report,
	})
	res.Outputs = outputs
	res.Report.Outputs = outputs
	if err != nil {
		return res, fmt.Errorf("write output: %w", err)
	}

	p.stage(ctx, StageComplete, PercentComplete)
	return res, nil
}

// report summarizes chunk outcomes.
func (p *implProcessor) report(source, title string, start time.Time, results []scheduler.ChunkResult, runErr error) output.Report {
	r := output.Report{
		Source:    source,
		Title:     title,
		StartedAt: start,
		Mode:      p.cfg.Retry.Mode,
		Chunks:    len(results),
		Aborted:   runErr != nil,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}

	for _, res := range results {
		switch {
		case res.Success:
			r.Succeeded++
			if r.Backends == nil {
				r.Backends = make(map[string]int)
			}
			r.Backends[res.BackendUsed]++
			for k, v := range res.Usage {
				if r.Usage == nil {
					r.Usage = make(map[string]int)
				}
				r.Usage[k] += v
			}
		case res.Skipped:
			r.Skipped = append(r.Skipped, res.Index)
		default:
			r.Failed = append(r.Failed, res.Index)
		}
	}
	return r
}
