// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest runs one research digest: it collects records from each
// configured source, deduplicates them, asks a Summarizer for a report, and
// hands the report to a Mailer.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/source"
	"github.com/pdiddy/research-digest/pkg/types"
)

// TracerName names the tracer used for pipeline spans.
const TracerName = "github.com/pdiddy/research-digest/internal/digest"

// Mailer delivers a finished report.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// Job is one adapter query within a run.
type Job struct {
	Adapter    source.Adapter
	Topic      string
	MaxResults int
}

// Pipeline wires the stages of a run. A nil Mailer makes Run a dry run.
type Pipeline struct {
	Jobs       []Job
	Summarizer Summarizer
	Mailer     Mailer
	Logger     *zap.Logger
	Subject    string
	Prompt     PromptOptions
}

// Result describes a completed run.
type Result struct {
	RunID   string
	Records []types.Record
	Removed int
	Report  string
	Sent    bool
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func tracer() trace.Tracer { return otel.Tracer(TracerName) }

// Collect runs every job in order and deduplicates the combined records.
// The first failing job aborts collection.
func (p *Pipeline) Collect(ctx context.Context, lookbackDays int) ([]types.Record, int, error) {
	log := p.logger()
	var all []types.Record

	for _, job := range p.Jobs {
		name := job.Adapter.Name()
		ctx, span := tracer().Start(ctx, "digest.collect",
			trace.WithAttributes(
				attribute.String("source", string(name)),
				attribute.String("topic", job.Topic),
			),
		)

		start := time.Now()
		records, err := job.Adapter.Search(ctx, job.Topic, lookbackDays, job.MaxResults)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			log.Error("Source search failed",
				zap.String("source", string(name)),
				zap.String("topic", job.Topic),
				zap.Error(err),
			)
			return nil, 0, fmt.Errorf("searching %s: %w", name, err)
		}
		span.SetAttributes(attribute.Int("records", len(records)))
		span.End()

		log.Info("Source searched",
			zap.String("source", string(name)),
			zap.String("topic", job.Topic),
			zap.Int("count", len(records)),
			zap.Duration("elapsed", time.Since(start)),
		)
		all = append(all, records...)
	}

	out, removed := source.Dedupe(all)
	return out, removed, nil
}

// Run executes a full digest. Records, prompt and report are built fresh for
// every call; nothing is retained between runs.
func (p *Pipeline) Run(ctx context.Context, lookbackDays int) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := p.logger().With(zap.String("run_id", res.RunID))

	ctx, span := tracer().Start(ctx, "digest.run", trace.WithAttributes(attribute.String("run_id", res.RunID)))
	defer span.End()

	q := *p
	q.Logger = log
	records, removed, err := q.Collect(ctx, lookbackDays)
	if err != nil {
		return nil, fail(span, err)
	}
	res.Records, res.Removed = records, removed
	log.Info("Records collected", zap.Int("count", len(records)), zap.Int("duplicates", removed))

	prompt, err := BuildPrompt(records, p.Prompt)
	if err != nil {
		return nil, fail(span, fmt.Errorf("building prompt: %w", err))
	}

	report, err := p.summarize(ctx, prompt)
	if err != nil {
		return nil, fail(span, fmt.Errorf("summarizing: %w", err))
	}
	res.Report = report
	log.Info("Report generated", zap.Int("chars", len(report)))

	if p.Mailer == nil {
		log.Info("Dry run, skipping delivery")
		return res, nil
	}

	if err := p.send(ctx, report); err != nil {
		return nil, fail(span, fmt.Errorf("sending report: %w", err))
	}
	res.Sent = true
	log.Info("Report sent", zap.String("subject", p.Subject))
	return res, nil
}

// fail marks span as failed with err and returns err.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (p *Pipeline) summarize(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer().Start(ctx, "digest.summarize")
	defer span.End()

	report, err := p.Summarizer.Summarize(ctx, prompt)
	if err != nil {
		span.RecordError(err)
	}
	return report, err
}

func (p *Pipeline) send(ctx context.Context, report string) error {
	ctx, span := tracer().Start(ctx, "digest.send")
	defer span.End()

	err := p.Mailer.Send(ctx, p.Subject, report)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
