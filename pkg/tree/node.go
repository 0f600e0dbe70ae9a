package tree

import (
	"slices"

	"github.com/go-drift/switcher/pkg/animation"
	"github.com/go-drift/switcher/pkg/graphics"
)

// NodeID uniquely identifies a node within its Document.
type NodeID uint64

// Node is an element of the retained visual tree.
//
// Structural edits and class changes take effect immediately. Writes to the
// max-size style properties are pending until the owning Document commits
// styles, which is when transitions start.
type Node struct {
	id       NodeID
	tag      string
	doc      *Document
	parent   *Node
	children []*Node
	classes  []string
	owner    any
	inert    bool

	pending      Style
	committed    Style
	hasCommitted bool
	transition   Transition
	animations   [2]*propertyTransition

	intrinsic graphics.Size
	minSize   graphics.Size
	natural   graphics.Size
	size      graphics.Size
	depth     int
}

// ID returns the node's identifier.
func (n *Node) ID() NodeID { return n.id }

// Tag returns the node's tag name.
func (n *Node) Tag() string { return n.tag }

// Document returns the document that created the node.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the node's children in order.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// Owner returns the value registered with SetOwner, usually the component
// whose root this node is.
func (n *Node) Owner() any { return n.owner }

// SetOwner associates an owning value with the node.
func (n *Node) SetOwner(owner any) { n.owner = owner }

// Inert reports whether the node is a detached visual snapshot.
func (n *Node) Inert() bool { return n.inert }

// Depth returns the node's distance from its topmost ancestor.
func (n *Node) Depth() int { return n.depth }

// AppendChild appends child to n, first removing it from any previous parent.
func (n *Node) AppendChild(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child, false)
	}
	child.parent = n
	n.children = append(n.children, child)
	child.setDepth(n.depth + 1)
	n.doc.markNeedsLayout()
}

// RemoveChild removes child from n. It is a no-op if child is not a child of n.
func (n *Node) RemoveChild(child *Node) {
	n.removeChild(child, true)
}

func (n *Node) removeChild(child *Node, stop bool) {
	index := slices.Index(n.children, child)
	if index < 0 {
		return
	}
	n.children = slices.Delete(n.children, index, index+1)
	child.parent = nil
	child.setDepth(0)
	if stop {
		child.stopTransitions()
	}
	n.doc.markNeedsLayout()
}

// Remove detaches n from its parent. Running transitions in the subtree stop.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Attached reports whether n is reachable from its document's root.
func (n *Node) Attached() bool {
	return n.doc != nil && n.doc.root.Contains(n)
}

// Walk visits n and its descendants depth-first. Returning false from visit
// skips the node's children.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, child := range slices.Clone(n.children) {
		child.Walk(visit)
	}
}

func (n *Node) setDepth(depth int) {
	n.depth = depth
	for _, child := range n.children {
		child.setDepth(depth + 1)
	}
}

// AddClass adds a class name. Adding an existing class is a no-op.
func (n *Node) AddClass(name string) {
	i, found := slices.BinarySearch(n.classes, name)
	if found {
		return
	}
	n.classes = slices.Insert(n.classes, i, name)
}

// RemoveClass removes a class name if present.
func (n *Node) RemoveClass(name string) {
	if i, found := slices.BinarySearch(n.classes, name); found {
		n.classes = slices.Delete(n.classes, i, i+1)
	}
}

// HasClass reports whether the node carries the class.
func (n *Node) HasClass(name string) bool {
	_, found := slices.BinarySearch(n.classes, name)
	return found
}

// Classes returns the node's classes in sorted order.
func (n *Node) Classes() []string { return slices.Clone(n.classes) }

// SetIntrinsicSize sets the content size a leaf contributes to layout.
func (n *Node) SetIntrinsicSize(size graphics.Size) {
	if n.intrinsic == size {
		return
	}
	n.intrinsic = size
	n.doc.markNeedsLayout()
}

// IntrinsicSize returns the size set with SetIntrinsicSize.
func (n *Node) IntrinsicSize() graphics.Size { return n.intrinsic }

// SetMinSize sets the footprint the node occupies regardless of content.
func (n *Node) SetMinSize(size graphics.Size) {
	if n.minSize == size {
		return
	}
	n.minSize = size
	n.doc.markNeedsLayout()
}

// MinSize returns the footprint set with SetMinSize.
func (n *Node) MinSize() graphics.Size { return n.minSize }

// NaturalSize returns the content-driven size from the last layout, before
// max-size constraints and the minimum footprint are applied.
func (n *Node) NaturalSize() graphics.Size { return n.natural }

// Size returns the laid-out size from the last layout.
func (n *Node) Size() graphics.Size { return n.size }

// SetTransition configures how max-size changes animate.
func (n *Node) SetTransition(t Transition) {
	if t.Duration < 0 {
		t.Duration = 0
	}
	n.transition = t
}

// Transition returns the node's transition configuration.
func (n *Node) Transition() Transition { return n.transition }

// SetMaxWidth writes a pending max-width.
func (n *Node) SetMaxWidth(l Length) { n.setPending(axisWidth, l) }

// SetMaxHeight writes a pending max-height.
func (n *Node) SetMaxHeight(l Length) { n.setPending(axisHeight, l) }

// SetMaxSize writes both pending max-size properties.
func (n *Node) SetMaxSize(size graphics.Size) {
	n.setPending(axisWidth, Px(size.Width))
	n.setPending(axisHeight, Px(size.Height))
}

// ClearMaxSize writes None to both max-size properties.
func (n *Node) ClearMaxSize() {
	n.setPending(axisWidth, None)
	n.setPending(axisHeight, None)
}

func (n *Node) setPending(a axis, l Length) {
	n.pending.set(a, l)
	n.doc.markStyleDirty(n)
}

// Style returns the declared style, including uncommitted writes.
func (n *Node) Style() Style { return n.pending }

// HasMaxSize reports whether either declared max-size property is set.
func (n *Node) HasMaxSize() bool {
	return !n.pending.MaxWidth.IsNone() || !n.pending.MaxHeight.IsNone()
}

// ComputedStyle returns the effective constraints: committed values, with
// running transitions substituted by their current animated value.
func (n *Node) ComputedStyle() Style {
	var s Style
	for _, a := range []axis{axisWidth, axisHeight} {
		if p := n.animations[a]; p != nil {
			s.set(a, Px(p.value()))
		} else {
			s.set(a, n.committed.get(a))
		}
	}
	return s
}

// Transitioning reports whether a max-size transition is in flight.
func (n *Node) Transitioning() bool {
	return n.animations[axisWidth] != nil || n.animations[axisHeight] != nil
}

// commit moves pending style to committed, starting transitions where the
// committed value changed on an attached node with a non-zero duration.
func (n *Node) commit() {
	first := !n.hasCommitted
	n.hasCommitted = true
	animate := !first && n.transition.Duration > 0 && n.Attached()

	for _, a := range []axis{axisWidth, axisHeight} {
		next := n.pending.get(a)
		prev := n.committed.get(a)
		if next == prev {
			continue
		}
		from := prev
		if p := n.animations[a]; p != nil {
			from = Px(p.value())
			p.stop()
			n.animations[a] = nil
		}
		n.committed.set(a, next)
		// None does not interpolate; such changes apply immediately.
		if !animate || next.IsNone() || from.IsNone() {
			continue
		}
		p := newPropertyTransition(from.Value(), next.Value(), n.transition, n.doc.markNeedsLayout)
		n.animations[a] = p
		p.controller.AddStatusListener(n.transitionEnded(a, p))
	}
	n.doc.markNeedsLayout()
}

func (n *Node) transitionEnded(a axis, p *propertyTransition) func(animation.AnimationStatus) {
	return func(status animation.AnimationStatus) {
		if status != animation.AnimationCompleted || n.animations[a] != p {
			return
		}
		n.animations[a] = nil
		n.doc.markNeedsLayout()
	}
}

func (n *Node) stopTransitions() {
	n.Walk(func(node *Node) bool {
		for a, p := range node.animations {
			if p != nil {
				p.stop()
				node.animations[a] = nil
			}
		}
		return true
	})
}

// Clone returns an inert deep copy of n: same tag, classes, intrinsic sizes,
// committed style and last layout, with fresh ids and no owners. The copy is
// detached and carries no transitions.
func (n *Node) Clone() *Node {
	clone := &Node{
		id:           n.doc.allocID(),
		tag:          n.tag,
		doc:          n.doc,
		classes:      slices.Clone(n.classes),
		inert:        true,
		pending:      n.ComputedStyle(),
		committed:    n.ComputedStyle(),
		hasCommitted: true,
		intrinsic:    n.intrinsic,
		minSize:      n.minSize,
		natural:      n.natural,
		size:         n.size,
	}
	for _, child := range n.children {
		c := child.Clone()
		c.parent = clone
		clone.children = append(clone.children, c)
	}
	clone.setDepth(0)
	return clone
}
