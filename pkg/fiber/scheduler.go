package fiber

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	ferrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// State is the scheduler's position in the render/commit cycle.
type State uint8

const (
	StateIdle State = iota
	StateScheduled
	StateRendering
	StateRenderComplete
	StateCommitting
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScheduled:
		return "Scheduled"
	case StateRendering:
		return "Rendering"
	case StateRenderComplete:
		return "RenderComplete"
	case StateCommitting:
		return "Committing"
	default:
		return "Unknown"
	}
}

// ErrNoContainer is returned when a root is scheduled without a container.
var ErrNoContainer = errors.New("fiber: root has no container")

// Root describes what to render into a container host node.
type Root struct {
	Container host.Node
	Children  []*vdom.VNode
}

// pass is the bookkeeping of one render pass.
type pass struct {
	id      string
	ctx     context.Context
	span    trace.Span
	started time.Time
	units   int
	slices  int
}

// Scheduler owns the render node trees of one container and drives render
// passes over them. It is not safe for concurrent use; the host calls it from
// a single goroutine.
type Scheduler struct {
	adapter        host.Adapter
	logger         *slog.Logger
	metrics        *Metrics
	tracer         trace.Tracer
	idle           IdleRequester
	idleTimeout    time.Duration
	yieldThreshold time.Duration
	onError        func(error)
	onCommit       func(CommitInfo)

	state     State
	nextUnit  *Node
	wip       *Node
	current   *Node
	deletions []*Node
	pass      *pass
	requested bool
	working   bool
}

// New creates a scheduler that applies commits through adapter.
func New(adapter host.Adapter, opts ...Option) *Scheduler {
	s := &Scheduler{
		adapter:        adapter,
		logger:         slog.Default().With("component", "fiber"),
		tracer:         defaultTracer(),
		idleTimeout:    DefaultIdleTimeout,
		yieldThreshold: DefaultYieldThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Scheduler) State() State { return s.state }

// Current returns the root of the last committed tree, or nil.
func (s *Scheduler) Current() *Node { return s.current }

// WorkInProgress returns the root of the pass being rendered, or nil.
func (s *Scheduler) WorkInProgress() *Node { return s.wip }

// NextUnit returns the node the next work unit will begin, or nil.
func (s *Scheduler) NextUnit() *Node { return s.nextUnit }

// Pending reports whether a render pass is waiting to finish.
func (s *Scheduler) Pending() bool { return s.wip != nil }

// Deletions returns the nodes the in-progress pass will remove.
func (s *Scheduler) Deletions() []*Node {
	out := make([]*Node, len(s.deletions))
	copy(out, s.deletions)
	return out
}

// Render schedules elements as the children of container.
func (s *Scheduler) Render(container host.Node, elements ...*vdom.VNode) error {
	return s.ScheduleRoot(Root{Container: container, Children: elements})
}

// ScheduleRoot starts a new render pass for root. A pass still in progress is
// discarded; its partial tree is never committed.
func (s *Scheduler) ScheduleRoot(root Root) error {
	return s.ScheduleRootContext(context.Background(), root)
}

// ScheduleRootContext is ScheduleRoot with a parent context for tracing.
func (s *Scheduler) ScheduleRootContext(ctx context.Context, root Root) error {
	if root.Container == nil {
		return ErrNoContainer
	}
	if s.working {
		return ferrors.New(ferrors.CodeReentrant)
	}

	if s.pass != nil {
		s.logger.Debug("render pass superseded",
			"pass", s.pass.id,
			"units", s.pass.units,
		)
		s.pass.endSuperseded()
		s.metrics.recordPass(outcomeSuperseded)
		s.resetDeletions()
	}
	prev := s.current
	if prev != nil {
		prev.Alternate = nil
		if prev.StateNode != root.Container {
			s.logger.Debug("render container changed, rendering from scratch")
			prev = nil
		}
	}

	rootNode := &Node{
		Tag:       TagRoot,
		StateNode: root.Container,
		Children:  root.Children,
		Alternate: prev,
	}

	p := &pass{id: uuid.NewString(), started: time.Now()}
	s.startPassSpan(ctx, p, len(root.Children))

	s.pass = p
	s.wip = rootNode
	s.nextUnit = rootNode
	s.deletions = nil
	s.state = StateScheduled

	s.logger.Debug("render pass scheduled",
		"pass", p.id,
		"children", len(root.Children),
		"update", prev != nil,
	)

	s.requestWork()
	return nil
}

// WorkLoop performs whole work units until the pass has been walked or the
// deadline runs out. At least one unit runs per call. When the walk
// finishes, the pass is committed in the same call without yielding.
//
// Calling WorkLoop with nothing scheduled is a no-op. On error the pass is
// abandoned and the current tree is left as it was.
func (s *Scheduler) WorkLoop(d Deadline) error {
	if s.working {
		return ferrors.New(ferrors.CodeReentrant)
	}
	if s.wip == nil {
		return nil
	}
	s.working = true
	defer func() { s.working = false }()

	p := s.pass
	p.slices++
	s.state = StateRendering

	units := 0
	for s.nextUnit != nil {
		next, err := s.performUnit(s.nextUnit)
		if err != nil {
			s.metrics.recordUnits(units)
			s.abandon(err)
			return err
		}
		s.nextUnit = next
		units++
		if s.nextUnit != nil && s.shouldYield(d) {
			break
		}
	}
	p.units += units
	s.metrics.recordUnits(units)

	if s.nextUnit != nil {
		s.metrics.recordYield()
		p.yielded(units)
		s.logger.Debug("render pass yielded",
			"pass", p.id,
			"units", units,
			"units_total", p.units,
		)
		return nil
	}

	s.state = StateRenderComplete
	return s.commit()
}

// Flush runs the pending pass, if any, to completion and commits it.
func (s *Scheduler) Flush() error {
	return s.WorkLoop(Overdue())
}

func (s *Scheduler) shouldYield(d Deadline) bool {
	if d.DidTimeout() {
		return false
	}
	return d.TimeRemaining() < s.yieldThreshold
}

func (s *Scheduler) commit() error {
	p := s.pass
	root := s.wip
	s.state = StateCommitting

	info := CommitInfo{PassID: p.id, Units: p.units, Slices: p.slices}
	span := s.startCommitSpan(p)
	start := time.Now()
	err := s.commitRoot(root, &info)
	info.Duration = time.Since(start)
	endCommitSpan(span, &info, err)

	if err != nil {
		s.abandon(err)
		return err
	}

	s.current = root
	s.wip = nil
	s.pass = nil
	s.state = StateIdle

	s.metrics.recordCommit(&info, info.Duration)
	s.metrics.recordPass(outcomeCommitted)
	p.endCommitted(&info)
	s.logger.Debug("render pass committed",
		"pass", p.id,
		"units", info.Units,
		"slices", info.Slices,
		"placements", info.Placements,
		"updates", info.Updates,
		"deletions", info.Deletions,
		"mutations", info.Mutations,
		"duration", info.Duration,
	)

	if s.onCommit != nil {
		s.working = false
		s.onCommit(info)
	}
	return nil
}

// abandon drops the in-progress pass after an error.
func (s *Scheduler) abandon(err error) {
	p := s.pass
	s.logger.Error("render pass failed",
		"pass", p.id,
		"state", s.state.String(),
		"error", err,
	)
	p.endFailed(err)
	s.metrics.recordPass(outcomeFailed)

	s.resetDeletions()
	s.wip = nil
	s.nextUnit = nil
	s.pass = nil
	s.state = StateIdle
}

// resetDeletions untags the committed nodes a discarded pass marked for
// removal.
func (s *Scheduler) resetDeletions() {
	for _, d := range s.deletions {
		d.EffectTag = EffectNone
	}
	s.deletions = nil
}

// requestWork asks the idle primitive for a slice if none is outstanding.
func (s *Scheduler) requestWork() {
	if s.idle == nil || s.requested {
		return
	}
	s.requested = true
	s.idle.RequestIdle(s.runIdle, s.idleTimeout)
}

func (s *Scheduler) runIdle(d Deadline) {
	s.requested = false
	if err := s.WorkLoop(d); err != nil && s.onError != nil {
		s.onError(err)
	}
	if s.wip != nil {
		s.requestWork()
	}
}
