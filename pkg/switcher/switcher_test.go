package switcher_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/switcher/pkg/animation"
	"github.com/go-drift/switcher/pkg/component"
	drifterrors "github.com/go-drift/switcher/pkg/errors"
	"github.com/go-drift/switcher/pkg/graphics"
	"github.com/go-drift/switcher/pkg/scheduler"
	"github.com/go-drift/switcher/pkg/switcher"
	switchtest "github.com/go-drift/switcher/pkg/testing"
	"github.com/go-drift/switcher/pkg/tree"
)

const transition = 300 * time.Millisecond

type phaseLog map[*tree.Node][]switcher.Phase

func (l phaseLog) OnPhase(container *tree.Node, phase switcher.Phase) {
	l[container] = append(l[container], phase)
}

func newSwitcher(t *testing.T, tester *switchtest.Tester, opts switcher.Options) *switcher.Switcher {
	t.Helper()
	if opts.Curve == nil {
		opts.Curve = animation.LinearCurve
	}
	sw := switcher.New(tester.Registry(), tester.Scheduler(), tester.Document(), opts)
	tester.Mount(sw)
	tester.Pump()
	return sw
}

func show(tester *switchtest.Tester, sw *switcher.Switcher, id *component.ID) error {
	return tester.Reconcile(func(latent *component.LatentSet) error {
		return sw.UpdateContent(latent, id)
	})
}

func mustShow(t *testing.T, tester *switchtest.Tester, sw *switcher.Switcher, id *component.ID) {
	t.Helper()
	if err := show(tester, sw, id); err != nil {
		t.Fatalf("UpdateContent(%v): %v", id, err)
	}
}

func settle(t *testing.T, tester *switchtest.Tester) {
	t.Helper()
	if err := tester.PumpAndSettle(5 * time.Second); err != nil {
		t.Fatal(err)
	}
}

func activeContainer(t *testing.T, tester *switchtest.Tester) *tree.Node {
	t.Helper()
	result := tester.Find(switchtest.ByClass(switcher.ActiveClass))
	if result.Count() != 1 {
		t.Fatalf("active containers = %d, want 1\n%s", result.Count(), tester.Dump())
	}
	return result.First()
}

func childOf(container *tree.Node) (component.ID, bool) {
	for _, child := range container.Children() {
		if c, ok := component.OwnerOf(child); ok {
			return c.ID(), true
		}
	}
	return 0, false
}

func TestUpdateContent_Scenario(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	sw.SetFootprint(graphics.Size{Width: 150, Height: 60})
	a := tester.NewBox("a", 100, 50)
	b := tester.NewBox("b", 200, 80)

	mustShow(t, tester, sw, a.ID().Ptr())
	settle(t, tester)

	mustShow(t, tester, sw, b.ID().Ptr())
	if got := len(sw.Containers()); got != 2 {
		t.Fatalf("containers = %d, want exiting + entering", got)
	}
	if sw.Phase() != switcher.PhasePendingMeasure {
		t.Errorf("phase = %v, want pending-measure", sw.Phase())
	}

	tester.Pump()
	entering := activeContainer(t, tester)
	style := entering.Style()
	if style.MaxWidth != tree.Px(200) || style.MaxHeight != tree.Px(80) {
		t.Errorf("target = %v,%v, want 200px,80px", style.MaxWidth, style.MaxHeight)
	}
	if sw.Phase() != switcher.PhaseGrowing {
		t.Errorf("phase = %v, want growing", sw.Phase())
	}

	tester.Advance(transition / 2)
	if w := entering.Size().Width; w <= 0 || w >= 200 {
		t.Errorf("midway width = %v, want strictly between 0 and 200", w)
	}

	tester.Advance(transition / 2)
	if entering.HasMaxSize() {
		t.Errorf("constraints not released: %v", entering.Style())
	}
	if sw.Phase() != switcher.PhaseSettled {
		t.Errorf("phase = %v, want settled", sw.Phase())
	}
	if got := sw.Containers(); len(got) != 1 || got[0] != entering {
		t.Errorf("a's container should be gone:\n%s", tester.Dump())
	}
	if _, ok := tester.Registry().Resolve(a.ID()); ok {
		t.Error("a was left latent by the pass and should have been destroyed")
	}
	tester.Pump()
	if got := entering.Size(); got != (graphics.Size{Width: 200, Height: 80}) {
		t.Errorf("settled size = %v, want 200x80", got)
	}
}

func TestUpdateContent_SameIDIsNoOp(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	a := tester.NewBox("a", 100, 50)

	mustShow(t, tester, sw, a.ID().Ptr())
	settle(t, tester)
	before := sw.Containers()

	mustShow(t, tester, sw, a.ID().Ptr())
	if !slices.Equal(before, sw.Containers()) {
		t.Errorf("containers changed:\n%s", tester.Dump())
	}
	if p := tester.Scheduler().Pending(); p != (scheduler.Pending{}) {
		t.Errorf("pending work = %+v, want none", p)
	}
	if sw.Phase() != switcher.PhaseSettled {
		t.Errorf("phase = %v", sw.Phase())
	}
}

func TestUpdateContent_NilOnEmptyIsNoOp(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})

	mustShow(t, tester, sw, nil)
	if len(sw.Containers()) != 0 || !tester.Scheduler().Idle() {
		t.Errorf("unexpected work:\n%s", tester.Dump())
	}
	if _, ok := sw.Content(); ok {
		t.Error("content should be empty")
	}
}

func TestUpdateContent_SupersededBeforeMeasure(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	log := phaseLog{}
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition, Observer: log})
	x := tester.NewBox("x", 100, 50)
	y := tester.NewBox("y", 60, 40)

	mustShow(t, tester, sw, x.ID().Ptr())
	first := sw.Containers()[0]
	mustShow(t, tester, sw, y.ID().Ptr())
	settle(t, tester)

	containers := sw.Containers()
	if len(containers) != 1 {
		t.Fatalf("containers = %d, want 1\n%s", len(containers), tester.Dump())
	}
	if id, ok := childOf(containers[0]); !ok || id != y.ID() {
		t.Errorf("mounted child = %v, want %v", id, y.ID())
	}
	if tester.Find(switchtest.Snapshots()).Exists() {
		t.Errorf("snapshot of x remains:\n%s", tester.Dump())
	}
	want := []switcher.Phase{
		switcher.PhaseCollapsed,
		switcher.PhasePendingMeasure,
		switcher.PhaseShrinking,
		switcher.PhaseRemoved,
	}
	if diff := cmp.Diff(want, log[first]); diff != "" {
		t.Errorf("superseded container phases (-want +got):\n%s", diff)
	}
}

func TestUpdateContent_StaleReleaseDoesNotTouchNewContainer(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	a := tester.NewBox("a", 100, 50)
	b := tester.NewBox("b", 80, 30)

	mustShow(t, tester, sw, a.ID().Ptr())
	tester.Pump()
	tester.Advance(100 * time.Millisecond)

	mustShow(t, tester, sw, b.ID().Ptr())
	tester.Pump()
	entering := activeContainer(t, tester)

	// a's release falls due here, b's only 100ms later.
	tester.Advance(200 * time.Millisecond)
	if !entering.HasMaxSize() || sw.Phase() != switcher.PhaseGrowing {
		t.Fatalf("b released early: phase=%v style=%v", sw.Phase(), entering.Style())
	}
	if len(sw.Containers()) != 2 {
		t.Errorf("a's container should still be exiting")
	}

	tester.Advance(100 * time.Millisecond)
	if entering.HasMaxSize() {
		t.Error("b should be released")
	}
	if len(sw.Containers()) != 1 {
		t.Errorf("containers = %d, want 1", len(sw.Containers()))
	}
}

func TestUpdateContent_NullContentTeardown(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	x := tester.NewBox("x", 100, 50)

	mustShow(t, tester, sw, x.ID().Ptr())
	settle(t, tester)
	mustShow(t, tester, sw, nil)

	if _, ok := sw.Mounted(); ok {
		t.Error("slot should be empty as soon as the exit starts")
	}
	if sw.Phase() != switcher.PhaseRemoved {
		t.Errorf("phase = %v, want removed", sw.Phase())
	}
	snapshots := tester.Find(switchtest.Snapshots())
	if snapshots.Count() != 1 || !snapshots.First().HasClass("x") {
		t.Fatalf("expected a snapshot of x:\n%s", tester.Dump())
	}
	exiting := sw.Containers()[0]
	if got, _ := sw.ContainerPhase(exiting); got != switcher.PhaseShrinking {
		t.Errorf("exiting phase = %v", got)
	}
	// The settled container is pinned first, so the collapse starts from its size.
	if got := exiting.ComputedStyle().MaxWidth; got != tree.Px(100) {
		t.Errorf("collapse starts at %v, want 100px", got)
	}

	tester.Advance(transition / 2)
	if w := exiting.Size().Width; w <= 0 || w >= 100 {
		t.Errorf("midway width = %v, want shrinking", w)
	}
	if !snapshots.First().Attached() {
		t.Error("snapshot should stay visible until cleanup")
	}

	tester.Advance(transition / 2)
	if n := len(sw.Containers()); n != 0 {
		t.Errorf("containers = %d, want 0", n)
	}
	if sw.Node().ChildCount() != 0 {
		t.Errorf("switcher root not empty:\n%s", sw.Node().Dump())
	}
}

func TestUpdateContent_ReuseAcrossSwitchers(t *testing.T) {
	for _, tt := range []struct {
		name          string
		releaseFirst  bool
		wantSnapshots int
	}{
		{name: "release then attach", releaseFirst: true, wantSnapshots: 1},
		{name: "attach then release", releaseFirst: false, wantSnapshots: 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			tester := switchtest.NewTesterWithT(t)
			first := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
			second := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
			x := tester.NewBox("x", 100, 50)

			mustShow(t, tester, first, x.ID().Ptr())
			settle(t, tester)

			err := tester.Reconcile(func(latent *component.LatentSet) error {
				if tt.releaseFirst {
					if err := first.UpdateContent(latent, nil); err != nil {
						return err
					}
					return second.UpdateContent(latent, x.ID().Ptr())
				}
				if err := second.UpdateContent(latent, x.ID().Ptr()); err != nil {
					return err
				}
				return first.UpdateContent(latent, nil)
			})
			if err != nil {
				t.Fatal(err)
			}

			if _, ok := tester.Registry().Resolve(x.ID()); !ok {
				t.Fatal("x was destroyed instead of moved")
			}
			if got := tester.Find(switchtest.ByComponent(x.ID())).Count(); got != 1 {
				t.Errorf("x appears %d times in the tree", got)
			}
			if !second.Node().Contains(x.Node()) {
				t.Errorf("x should live in the second switcher:\n%s", tester.Dump())
			}
			if got := tester.Find(switchtest.Descendant(switchtest.ByComponent(first.ID()), switchtest.Snapshots())).Count(); got != tt.wantSnapshots {
				t.Errorf("snapshots in first switcher = %d, want %d", got, tt.wantSnapshots)
			}

			settle(t, tester)
			if len(first.Containers()) != 0 {
				t.Error("first switcher should be empty")
			}
			if got := x.Node().Parent().Parent(); got != second.Node() {
				t.Error("x should be mounted in second's container")
			}
		})
	}
}

func TestUpdateContent_ReuseWithinPass(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	x := tester.NewBox("x", 100, 50)
	y := tester.NewBox("y", 10, 10)

	mustShow(t, tester, sw, x.ID().Ptr())
	settle(t, tester)

	err := tester.Reconcile(func(latent *component.LatentSet) error {
		if err := sw.UpdateContent(latent, y.ID().Ptr()); err != nil {
			return err
		}
		if !latent.Has(x.ID()) {
			t.Error("x should be latent after its exit")
		}
		return sw.UpdateContent(latent, x.ID().Ptr())
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tester.Registry().Resolve(x.ID()); !ok {
		t.Fatal("x should survive the pass")
	}
	if _, ok := tester.Registry().Resolve(y.ID()); ok {
		t.Error("y was left latent and should be destroyed")
	}
	if id, _ := sw.Mounted(); id != x.ID() {
		t.Errorf("mounted = %v, want %v", id, x.ID())
	}
	settle(t, tester)
	if len(sw.Containers()) != 1 {
		t.Errorf("containers = %d, want 1\n%s", len(sw.Containers()), tester.Dump())
	}
}

func TestUpdateContent_ZeroDurationRunsEveryPhase(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	log := phaseLog{}
	sw := newSwitcher(t, tester, switcher.Options{Observer: log})
	a := tester.NewBox("a", 100, 50)
	b := tester.NewBox("b", 40, 40)

	mustShow(t, tester, sw, a.ID().Ptr())
	first := sw.Containers()[0]
	tester.Pump()
	if first.HasMaxSize() {
		t.Errorf("zero duration should still release constraints: %v", first.Style())
	}

	mustShow(t, tester, sw, b.ID().Ptr())
	tester.Pump()

	want := []switcher.Phase{
		switcher.PhaseCollapsed,
		switcher.PhasePendingMeasure,
		switcher.PhaseGrowing,
		switcher.PhaseSettled,
		switcher.PhaseShrinking,
		switcher.PhaseRemoved,
	}
	if diff := cmp.Diff(want, log[first]); diff != "" {
		t.Errorf("phases (-want +got):\n%s", diff)
	}
	if len(sw.Containers()) != 1 || sw.Phase() != switcher.PhaseSettled {
		t.Errorf("containers=%d phase=%v", len(sw.Containers()), sw.Phase())
	}
}

func TestUpdateContent_UnknownID(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	a := tester.NewBox("a", 100, 50)
	mustShow(t, tester, sw, a.ID().Ptr())
	settle(t, tester)

	missing := component.ID(9999)
	err := show(tester, sw, missing.Ptr())
	if !errors.Is(err, component.ErrUnknownID) {
		t.Fatalf("err = %v, want ErrUnknownID", err)
	}
	if id, ok := sw.Content(); !ok || id != missing {
		t.Errorf("content = %v,%v, want %v", id, ok, missing)
	}
	if _, ok := sw.Mounted(); ok {
		t.Error("nothing should be mounted")
	}
	reported := tester.Errors()
	if len(reported) != 1 || reported[0].Kind != drifterrors.KindResolve {
		t.Errorf("reported = %v", reported)
	}
	if got := tester.Find(switchtest.ByTag(switcher.ContainerTag)).Count(); got != 1 {
		t.Errorf("only the exiting container should exist, got %d", got)
	}

	settle(t, tester)
	if len(sw.Containers()) != 0 {
		t.Errorf("containers = %d, want 0", len(sw.Containers()))
	}
}

func TestSetTransitionTime(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: -time.Second})
	if sw.TransitionTime() != 0 {
		t.Errorf("negative duration should clamp to 0, got %v", sw.TransitionTime())
	}

	sw.SetTransitionTime(100 * time.Millisecond)
	a := tester.NewBox("a", 10, 10)
	mustShow(t, tester, sw, a.ID().Ptr())
	tester.Pump()
	tester.Advance(99 * time.Millisecond)
	if sw.Phase() != switcher.PhaseGrowing {
		t.Errorf("phase = %v, want growing", sw.Phase())
	}
	tester.Advance(time.Millisecond)
	if sw.Phase() != switcher.PhaseSettled {
		t.Errorf("phase = %v, want settled", sw.Phase())
	}
}

func TestSettledChildResizesFreely(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	a := tester.NewBox("a", 100, 50)
	mustShow(t, tester, sw, a.ID().Ptr())
	settle(t, tester)

	a.Resize(graphics.Size{Width: 300, Height: 120})
	tester.Pump()
	if got := activeContainer(t, tester).Size(); got != (graphics.Size{Width: 300, Height: 120}) {
		t.Errorf("container size = %v, want 300x120", got)
	}
}

func TestOverlappingExitsStack(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	a := tester.NewBox("a", 100, 50)
	b := tester.NewBox("b", 100, 50)
	c := tester.NewBox("c", 100, 50)

	mustShow(t, tester, sw, a.ID().Ptr())
	tester.Pump()
	tester.Advance(50 * time.Millisecond)
	mustShow(t, tester, sw, b.ID().Ptr())
	tester.Pump()
	tester.Advance(50 * time.Millisecond)
	mustShow(t, tester, sw, c.ID().Ptr())

	var labels []string
	for _, snap := range tester.Find(switchtest.Snapshots()).All() {
		labels = append(labels, snap.Classes()...)
	}
	if diff := cmp.Diff([]string{"a", "b"}, labels); diff != "" {
		t.Errorf("stacked snapshots (-want +got):\n%s", diff)
	}
	if got := tester.Find(switchtest.ByClass(switcher.ActiveClass)).Count(); got != 1 {
		t.Errorf("active containers = %d, want 1", got)
	}

	settle(t, tester)
	if len(sw.Containers()) != 1 || tester.Find(switchtest.Snapshots()).Exists() {
		t.Errorf("only c should remain:\n%s", tester.Dump())
	}
}

func TestDestroy(t *testing.T) {
	tester := switchtest.NewTesterWithT(t)
	sw := newSwitcher(t, tester, switcher.Options{TransitionTime: transition})
	a := tester.NewBox("a", 100, 50)
	b := tester.NewBox("b", 100, 50)
	mustShow(t, tester, sw, a.ID().Ptr())
	tester.Pump()
	mustShow(t, tester, sw, b.ID().Ptr())

	tester.Registry().Unregister(sw.ID())
	if !sw.Destroyed() {
		t.Fatal("unregistering should destroy the switcher")
	}
	if sw.Node().Parent() != nil {
		t.Error("root should be detached")
	}
	if b.Node().Parent() != nil {
		t.Error("live child should be detached")
	}
	if _, ok := tester.Registry().Resolve(b.ID()); !ok {
		t.Error("live child belongs to its owner and must not be destroyed")
	}

	settle(t, tester)
	if len(tester.Panics()) != 0 {
		t.Errorf("stale callbacks panicked: %v", tester.Panics())
	}
	if err := show(tester, sw, a.ID().Ptr()); !errors.Is(err, switcher.ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
}

func TestPhaseString(t *testing.T) {
	tests := map[switcher.Phase]string{
		switcher.PhaseCollapsed:      "collapsed",
		switcher.PhasePendingMeasure: "pending-measure",
		switcher.PhaseGrowing:        "growing",
		switcher.PhaseSettled:        "settled",
		switcher.PhaseShrinking:      "shrinking",
		switcher.PhaseRemoved:        "removed",
		switcher.Phase(42):           "unknown",
	}
	for phase, want := range tests {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(phase), got, want)
		}
	}
}
