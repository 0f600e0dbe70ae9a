package switcher

import (
	"errors"
	"slices"
	"time"

	"github.com/go-drift/switcher/pkg/component"
	drifterrors "github.com/go-drift/switcher/pkg/errors"
	"github.com/go-drift/switcher/pkg/graphics"
	"github.com/go-drift/switcher/pkg/scheduler"
	"github.com/go-drift/switcher/pkg/tree"
)

const (
	// Tag is the tag of a switcher's root node.
	Tag = "switcher"
	// ContainerTag is the tag of the container nodes wrapping each child.
	ContainerTag = "switcher-child"
	// ActiveClass marks the container holding the live child.
	ActiveClass = "active"
)

// ErrDestroyed is returned by UpdateContent after Destroy.
var ErrDestroyed = errors.New("switcher: destroyed")

// Observer is notified whenever a container changes phase.
type Observer interface {
	OnPhase(container *tree.Node, phase Phase)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(container *tree.Node, phase Phase)

func (f ObserverFunc) OnPhase(container *tree.Node, phase Phase) { f(container, phase) }

// Options configures a Switcher.
type Options struct {
	// TransitionTime is the length of the grow and shrink animations.
	// Negative values are treated as zero.
	TransitionTime time.Duration
	// Curve eases the size transitions. If nil, animation.Ease is used.
	Curve func(float64) float64
	// Footprint is the switcher's own minimum size. A growing child is never
	// sized below it.
	Footprint graphics.Size
	// Observer, if non-nil, receives every container phase change.
	Observer Observer
}

type container struct {
	node  *tree.Node
	child component.ID
	phase Phase
}

// Switcher is a single-slot component that animates between its children.
//
// A Switcher is driven from the scheduler's goroutine: UpdateContent and
// the deferred callbacks it schedules never run concurrently.
type Switcher struct {
	id       component.ID
	registry *component.Registry
	sched    *scheduler.Scheduler
	doc      *tree.Document
	root     *tree.Node

	transitionTime time.Duration
	curve          func(float64) float64
	observer       Observer

	content    *component.ID
	current    *container
	containers []*container
	generation uint64
	destroyed  bool
}

// New creates a switcher and registers it in reg. The switcher's root node is
// detached; callers place it in the tree like any other component.
func New(reg *component.Registry, sched *scheduler.Scheduler, doc *tree.Document, opts Options) *Switcher {
	return reg.Register(func(id component.ID) component.Component {
		s := &Switcher{
			id:       id,
			registry: reg,
			sched:    sched,
			doc:      doc,
			root:     doc.NewNode(Tag),
			curve:    opts.Curve,
			observer: opts.Observer,
		}
		s.SetTransitionTime(opts.TransitionTime)
		s.root.SetMinSize(opts.Footprint)
		return s
	}).(*Switcher)
}

// ID returns the switcher's component identifier.
func (s *Switcher) ID() component.ID { return s.id }

// Node returns the switcher's root node.
func (s *Switcher) Node() *tree.Node { return s.root }

// SetTransitionTime sets the duration used by transitions that start after
// the call. Negative durations are clamped to zero.
func (s *Switcher) SetTransitionTime(d time.Duration) {
	s.transitionTime = max(d, 0)
}

// TransitionTime returns the configured transition duration.
func (s *Switcher) TransitionTime() time.Duration { return s.transitionTime }

// SetFootprint sets the switcher's own minimum size.
func (s *Switcher) SetFootprint(size graphics.Size) {
	s.root.SetMinSize(size)
}

// Content returns the most recently requested content.
func (s *Switcher) Content() (component.ID, bool) {
	if s.content == nil {
		return 0, false
	}
	return *s.content, true
}

// Mounted returns the child attached to the active container.
func (s *Switcher) Mounted() (component.ID, bool) {
	if s.current == nil {
		return 0, false
	}
	return s.current.child, true
}

// Phase returns the phase of the active container, or PhaseRemoved when the
// slot is empty.
func (s *Switcher) Phase() Phase {
	if s.current == nil {
		return PhaseRemoved
	}
	return s.current.phase
}

// Containers returns every container still in the tree, oldest first. At
// most one of them is active; the rest are exiting snapshots.
func (s *Switcher) Containers() []*tree.Node {
	nodes := make([]*tree.Node, len(s.containers))
	for i, c := range s.containers {
		nodes[i] = c.node
	}
	return nodes
}

// ContainerPhase returns the phase of a container returned by Containers.
func (s *Switcher) ContainerPhase(node *tree.Node) (Phase, bool) {
	for _, c := range s.containers {
		if c.node == node {
			return c.phase, true
		}
	}
	return 0, false
}

// Destroyed reports whether Destroy has been called.
func (s *Switcher) Destroyed() bool { return s.destroyed }

// UpdateContent swaps the displayed child for the component identified by
// id, or for nothing when id is nil. Detached and attached children move
// through latent, so the reconciliation pass may reuse them elsewhere.
//
// Requesting the child that is already mounted does nothing. If id does not
// resolve, the previous child still exits, the slot stays empty and an error
// wrapping component.ErrUnknownID is reported and returned.
func (s *Switcher) UpdateContent(latent *component.LatentSet, id *component.ID) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if s.isMounted(id) {
		s.content = cloneID(id)
		return nil
	}
	s.content = cloneID(id)
	s.generation++

	if s.current != nil {
		s.exit(latent, s.current)
	}
	if id == nil {
		return nil
	}
	return s.enter(latent, *id)
}

func (s *Switcher) isMounted(id *component.ID) bool {
	if id == nil {
		return s.current == nil
	}
	return s.current != nil && s.current.child == *id
}

func (s *Switcher) transition() tree.Transition {
	return tree.Transition{Duration: s.transitionTime, Curve: s.curve}
}

// exit replaces c's live child with a snapshot and collapses c. The slot is
// empty as soon as exit returns.
func (s *Switcher) exit(latent *component.LatentSet, c *container) {
	s.current = nil

	// The child may already live elsewhere; resolve it rather than trusting c.
	var snapshot *tree.Node
	if child, ok := s.registry.Resolve(c.child); ok {
		snapshot = child.Node().Clone()
	}
	_ = component.ReplaceOnlyChild(s.registry, latent, c.node, nil)
	if snapshot != nil {
		c.node.AppendChild(snapshot)
	}

	c.node.RemoveClass(ActiveClass)
	c.node.SetTransition(s.transition())
	// Pin the current size first so a released container collapses smoothly.
	c.node.SetMaxSize(c.node.Size())
	s.doc.CommitStyles()
	c.node.SetMaxSize(graphics.SizeZero)
	s.doc.CommitStyles()
	s.setPhase(c, PhaseShrinking)

	s.sched.AfterFunc(s.transitionTime, func() { s.cleanup(c) })
}

// cleanup removes an exited container. It runs whether or not the slot has
// changed since, but never touches the active container.
func (s *Switcher) cleanup(c *container) {
	if s.destroyed || c.phase == PhaseRemoved {
		return
	}
	c.node.Remove()
	s.forget(c)
	s.setPhase(c, PhaseRemoved)
}

func (s *Switcher) enter(latent *component.LatentSet, id component.ID) error {
	c := &container{node: s.doc.NewNode(ContainerTag), child: id}
	c.node.SetTransition(s.transition())
	c.node.SetMaxSize(graphics.SizeZero)
	s.root.AppendChild(c.node)
	s.containers = append(s.containers, c)
	s.setPhase(c, PhaseCollapsed)

	if err := component.ReplaceOnlyChild(s.registry, latent, c.node, &id); err != nil {
		c.node.Remove()
		s.forget(c)
		s.setPhase(c, PhaseRemoved)
		return drifterrors.ReportError("switcher.UpdateContent", drifterrors.KindResolve, err)
	}

	// The collapsed size must be committed before the container activates,
	// otherwise the grow below has no baseline to transition from.
	s.doc.CommitStyles()
	c.node.AddClass(ActiveClass)
	s.current = c
	s.setPhase(c, PhasePendingMeasure)

	gen := s.generation
	s.sched.RequestFrame(func() { s.measure(c, gen) })
	return nil
}

// isCurrent reports whether a callback scheduled for c in generation gen
// still applies.
func (s *Switcher) isCurrent(c *container, gen uint64) bool {
	return !s.destroyed && s.current == c && s.generation == gen
}

// measure runs on the layout frame after enter: the container grows to the
// child's natural size, but never below the switcher's own size.
func (s *Switcher) measure(c *container, gen uint64) {
	if !s.isCurrent(c, gen) {
		return
	}
	var natural graphics.Size
	if child, ok := s.registry.Resolve(c.child); ok {
		natural = child.Node().NaturalSize()
	}
	target := natural.Max(s.root.Size())

	c.node.SetTransition(s.transition())
	c.node.SetMaxSize(target)
	s.doc.CommitStyles()
	s.setPhase(c, PhaseGrowing)

	s.sched.AfterFunc(s.transitionTime, func() { s.release(c, gen) })
}

// release drops the explicit size constraints so the child sizes freely.
func (s *Switcher) release(c *container, gen uint64) {
	if !s.isCurrent(c, gen) {
		return
	}
	c.node.ClearMaxSize()
	s.doc.CommitStyles()
	s.setPhase(c, PhaseSettled)
}

// Destroy tears the switcher down. The live child is detached but not
// destroyed; it is left to whoever owns it. Every pending callback becomes
// inert, and the switcher is unregistered.
func (s *Switcher) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.generation++

	if c := s.current; c != nil {
		if child, ok := s.registry.Resolve(c.child); ok && child.Node().Parent() == c.node {
			c.node.RemoveChild(child.Node())
		}
	}
	s.current = nil
	s.root.Remove()
	for _, c := range s.containers {
		s.setPhase(c, PhaseRemoved)
	}
	s.containers = nil
	s.registry.Unregister(s.id)
}

func (s *Switcher) forget(c *container) {
	s.containers = slices.DeleteFunc(s.containers, func(other *container) bool {
		return other == c
	})
}

func (s *Switcher) setPhase(c *container, p Phase) {
	c.phase = p
	if s.observer != nil {
		s.observer.OnPhase(c.node, p)
	}
}

func cloneID(id *component.ID) *component.ID {
	if id == nil {
		return nil
	}
	return id.Ptr()
}
