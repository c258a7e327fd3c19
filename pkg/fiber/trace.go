package fiber

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for the scheduler.
const defaultTracerName = "github.com/vango-dev/fiber"

func defaultTracer() trace.Tracer {
	return otel.Tracer(defaultTracerName)
}

// startPassSpan opens the span covering one render pass, from scheduling to
// commit, failure or supersession. It spans every yield in between.
func (s *Scheduler) startPassSpan(ctx context.Context, p *pass, children int) {
	p.ctx, p.span = s.tracer.Start(ctx, "fiber.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("fiber.pass_id", p.id),
			attribute.Int("fiber.root_children", children),
		),
	)
}

func (p *pass) yielded(units int) {
	p.span.AddEvent("yield", trace.WithAttributes(
		attribute.Int("fiber.units", units),
		attribute.Int("fiber.units_total", p.units),
	))
}

func (p *pass) endSuperseded() {
	p.span.SetAttributes(attribute.Bool("fiber.superseded", true))
	p.span.End()
}

func (p *pass) endFailed(err error) {
	p.span.RecordError(err)
	p.span.SetStatus(codes.Error, err.Error())
	p.span.End()
}

func (p *pass) endCommitted(info *CommitInfo) {
	p.span.SetAttributes(
		attribute.Int("fiber.units_total", info.Units),
		attribute.Int("fiber.slices", info.Slices),
	)
	p.span.SetStatus(codes.Ok, "")
	p.span.End()
}

// startCommitSpan opens the child span of the commit phase.
func (s *Scheduler) startCommitSpan(p *pass) trace.Span {
	_, span := s.tracer.Start(p.ctx, "fiber.commit")
	return span
}

func endCommitSpan(span trace.Span, info *CommitInfo, err error) {
	span.SetAttributes(
		attribute.Int("fiber.placements", info.Placements),
		attribute.Int("fiber.updates", info.Updates),
		attribute.Int("fiber.deletions", info.Deletions),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
