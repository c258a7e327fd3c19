package fiber

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/fiber/pkg/host/memhost"
	"github.com/vango-dev/fiber/pkg/vdom"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"host": "mem"}))
	s, tree := newTest(t, WithMetrics(m))

	require.NoError(t, s.Render(tree.Container(), nested("B")))
	for s.Pending() {
		require.NoError(t, s.WorkLoop(Units(2)))
	}
	assert.Equal(t, 5.0, testutil.ToFloat64(m.workUnits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.yields))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues(outcomeCommitted)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.effects.WithLabelValues("placement")))

	require.NoError(t, s.Render(tree.Container(), nested("B2")))
	require.NoError(t, s.WorkLoop(Units(1)))
	require.NoError(t, s.Render(tree.Container(), nested("B3")))
	require.NoError(t, s.Flush())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues(outcomeSuperseded)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.passes.WithLabelValues(outcomeCommitted)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.effects.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hostMutations))

	tree.FailOn(memhost.OpSetText, errors.New("boom"))
	require.NoError(t, s.Render(tree.Container(), nested("B4")))
	require.Error(t, s.Flush())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues(outcomeFailed)))

	assert.Equal(t, 1, testutil.CollectAndCount(m.commitDuration))
	n, err := testutil.GatherAndCount(reg, "fiber_work_units_total", "fiber_render_passes_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	m.recordUnits(3)
	m.recordYield()
	m.recordPass(outcomeCommitted)
	m.recordCommit(&CommitInfo{}, time.Millisecond)
}

func TestTracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	s, tree := newTest(t, WithTracerProvider(tp))

	require.NoError(t, s.Render(tree.Container(), nested("B")))
	for s.Pending() {
		require.NoError(t, s.WorkLoop(Units(2)))
	}

	spans := rec.Ended()
	require.Len(t, spans, 2)
	commit, pass := spans[0], spans[1]
	assert.Equal(t, "fiber.commit", commit.Name())
	assert.Equal(t, "fiber.render", pass.Name())
	assert.Equal(t, pass.SpanContext().SpanID(), commit.Parent().SpanID())
	assert.Equal(t, codes.Ok, pass.Status().Code)

	var yields int
	for _, e := range pass.Events() {
		if e.Name == "yield" {
			yields++
		}
	}
	assert.Equal(t, 2, yields)

	attrs := map[string]int64{}
	for _, kv := range commit.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInt64()
	}
	assert.Equal(t, int64(4), attrs["fiber.placements"])

	// A superseded pass ends its span without a commit.
	require.NoError(t, s.Render(tree.Container(), nested("B2")))
	require.NoError(t, s.Render(tree.Container(), vdom.Div(&vdom.VNode{Kind: vdom.KindText, Tag: "x"})))
	require.Error(t, s.Flush())

	spans = rec.Ended()
	require.Len(t, spans, 4)
	superseded := spans[2]
	failed := spans[3]
	assert.Equal(t, "fiber.render", superseded.Name())
	found := false
	for _, kv := range superseded.Attributes() {
		if kv.Key == "fiber.superseded" {
			found = kv.Value.AsBool()
		}
	}
	assert.True(t, found)
	assert.Equal(t, codes.Error, failed.Status().Code)
}

// queue is an idle requester whose callbacks the test runs by hand.
type queue struct {
	pending  []func(Deadline)
	timeouts []time.Duration
}

func (q *queue) RequestIdle(cb func(Deadline), timeout time.Duration) {
	q.pending = append(q.pending, cb)
	q.timeouts = append(q.timeouts, timeout)
}

func (q *queue) run(d Deadline) bool {
	if len(q.pending) == 0 {
		return false
	}
	cb := q.pending[0]
	q.pending = q.pending[1:]
	cb(d)
	return true
}

func TestIdleDrivesPass(t *testing.T) {
	q := &queue{}
	var commits int
	s, tree := newTest(t,
		WithIdle(q, 0),
		WithCommitHook(func(CommitInfo) { commits++ }),
	)

	require.NoError(t, s.Render(tree.Container(), nested("B")))
	require.NoError(t, s.Render(tree.Container(), nested("B")))
	require.Len(t, q.pending, 1)
	assert.Equal(t, DefaultIdleTimeout, q.timeouts[0])

	slices := 0
	for q.run(Units(1)) {
		slices++
	}
	assert.Equal(t, 5, slices)
	assert.Equal(t, 1, commits)
	assert.False(t, s.Pending())
	assert.Equal(t, `<div>A<div>B</div></div>`, tree.HTML())

	// Nothing pending: no further requests.
	assert.Empty(t, q.pending)
}

func TestIdleReportsErrors(t *testing.T) {
	q := &queue{}
	var got []error
	s, tree := newTest(t,
		WithIdle(q, 50*time.Millisecond),
		WithErrorHandler(func(err error) { got = append(got, err) }),
	)
	require.NoError(t, s.Render(tree.Container(), vdom.Div(nil, &vdom.VNode{Kind: vdom.KindElement})))
	for q.run(Overdue()) {
	}
	require.Len(t, got, 1)
	assert.Equal(t, 50*time.Millisecond, q.timeouts[0])
	assert.Nil(t, s.Current())
}

func TestBudgetDeadline(t *testing.T) {
	d := Budget(time.Hour)
	assert.Greater(t, d.TimeRemaining(), 59*time.Minute)
	assert.False(t, d.DidTimeout())
	assert.Equal(t, time.Duration(0), Budget(-time.Second).TimeRemaining())
	assert.True(t, Overdue().DidTimeout())
}
