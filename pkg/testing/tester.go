package testing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/switcher/pkg/animation"
	"github.com/go-drift/switcher/pkg/component"
	drifterrors "github.com/go-drift/switcher/pkg/errors"
	"github.com/go-drift/switcher/pkg/graphics"
	"github.com/go-drift/switcher/pkg/scheduler"
	"github.com/go-drift/switcher/pkg/tree"
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: scheduler did not settle")

// Tester wires a registry, document and scheduler to a fake clock. It takes
// over the global animation clock and error handler until Cleanup.
type Tester struct {
	registry *component.Registry
	doc      *tree.Document
	sched    *scheduler.Scheduler
	clock    *FakeClock

	prevClock   animation.Clock
	prevHandler drifterrors.ErrorHandler

	mu     sync.Mutex
	errs   []*drifterrors.DriftError
	panics []*drifterrors.PanicError
}

// NewTester creates a tester with a fresh environment.
// Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester() *Tester {
	clk := NewFakeClock()
	doc := tree.NewDocument()
	t := &Tester{
		registry: component.NewRegistry(),
		doc:      doc,
		sched:    scheduler.New(scheduler.WithClock(clk), scheduler.WithLayouter(doc)),
		clock:    clk,
	}
	t.prevClock = animation.SetClock(clk)
	t.prevHandler = drifterrors.SetHandler(t)
	return t
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup stops running animations and restores the global clock and error
// handler. Must be called if not using NewTesterWithT.
func (t *Tester) Cleanup() {
	animation.StopAllTickers()
	animation.SetClock(t.prevClock)
	drifterrors.SetHandler(t.prevHandler)
}

// Clock returns the fake clock. Prefer Advance, which also runs the work
// that falls due.
func (t *Tester) Clock() *FakeClock { return t.clock }

// Registry returns the component registry.
func (t *Tester) Registry() *component.Registry { return t.registry }

// Document returns the document under test.
func (t *Tester) Document() *tree.Document { return t.doc }

// Scheduler returns the scheduler driven by the fake clock.
func (t *Tester) Scheduler() *scheduler.Scheduler { return t.sched }

// Mount appends the component's root node to the document root.
func (t *Tester) Mount(c component.Component) {
	t.doc.Root().AppendChild(c.Node())
}

// NewBox registers a box component with the given natural size.
func (t *Tester) NewBox(label string, width, height float64) *component.Box {
	return component.NewBox(t.registry, t.doc, label, graphics.Size{Width: width, Height: height})
}

// Reconcile runs fn as one reconciliation pass. See component.Registry.Reconcile.
func (t *Tester) Reconcile(fn func(latent *component.LatentSet) error) error {
	return t.registry.Reconcile(fn)
}

// Pump runs due work and a single frame at the current instant.
func (t *Tester) Pump() {
	t.sched.RunDue()
	t.sched.Frame()
	t.sched.RunDue()
}

// Advance moves time forward by d, running each timer and frame that falls
// inside the window at its own instant.
func (t *Tester) Advance(d time.Duration) {
	// The scheduler's clock is always a FakeClock here.
	_ = t.sched.Advance(d)
}

// PumpAndSettle runs frames until no tasks, timers, frame callbacks or
// animations remain. Returns ErrSettleTimeout if that takes longer than
// timeout of fake time.
func (t *Tester) PumpAndSettle(timeout time.Duration) error {
	settled, err := t.sched.Settle(timeout)
	if err != nil {
		return err
	}
	if !settled {
		return ErrSettleTimeout
	}
	return nil
}

// Find evaluates a finder against the document.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{
		nodes:  finder.Evaluate(t.doc.Root()),
		finder: finder,
	}
}

// Dump returns the document outline. See tree.Node.Dump.
func (t *Tester) Dump() string {
	return t.doc.Root().Dump()
}

// HandleError records reported errors.
func (t *Tester) HandleError(err *drifterrors.DriftError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errs = append(t.errs, err)
}

// HandlePanic records recovered panics.
func (t *Tester) HandlePanic(err *drifterrors.PanicError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panics = append(t.panics, err)
}

// Errors returns the errors reported since the tester was created.
func (t *Tester) Errors() []*drifterrors.DriftError {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*drifterrors.DriftError(nil), t.errs...)
}

// Panics returns the panics recovered since the tester was created.
func (t *Tester) Panics() []*drifterrors.PanicError {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*drifterrors.PanicError(nil), t.panics...)
}
