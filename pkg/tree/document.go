package tree

import (
	"slices"

	"github.com/go-drift/switcher/pkg/graphics"
)

// RootTag is the tag of every document's root node.
const RootTag = "document"

// Document owns a tree of nodes and the pending style writes against them.
//
// The frame sequence mirrors a browser engine:
//  1. CommitStyles - pending max-size writes become committed, starting
//     transitions where values changed
//  2. Layout - sizes are resolved from the root down
//
// A Document is not safe for concurrent use; all access happens on the
// scheduler's goroutine.
type Document struct {
	root        *Node
	nextID      NodeID
	dirtyStyle  []*Node
	dirtySet    map[*Node]bool
	needsLayout bool
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.root = d.NewNode(RootTag)
	d.needsLayout = true
	return d
}

// Root returns the document's root node.
func (d *Document) Root() *Node { return d.root }

// NewNode creates a detached node owned by d.
func (d *Document) NewNode(tag string) *Node {
	return &Node{id: d.allocID(), tag: tag, doc: d}
}

func (d *Document) allocID() NodeID {
	d.nextID++
	return d.nextID
}

func (d *Document) markStyleDirty(n *Node) {
	if d.dirtySet == nil {
		d.dirtySet = make(map[*Node]bool)
	}
	if d.dirtySet[n] {
		return
	}
	d.dirtySet[n] = true
	d.dirtyStyle = append(d.dirtyStyle, n)
}

func (d *Document) markNeedsLayout() {
	d.needsLayout = true
}

// NeedsCommit reports whether style writes are pending.
func (d *Document) NeedsCommit() bool { return len(d.dirtyStyle) > 0 }

// NeedsLayout reports whether layout is stale.
func (d *Document) NeedsLayout() bool { return d.needsLayout || d.NeedsCommit() }

// CommitStyles commits all pending style writes, parents first. Calling it
// between two writes to the same node forces the first value to be observed,
// so the second one transitions from it.
func (d *Document) CommitStyles() {
	for len(d.dirtyStyle) > 0 {
		slices.SortStableFunc(d.dirtyStyle, func(a, b *Node) int {
			return a.depth - b.depth
		})
		dirty := d.dirtyStyle
		d.dirtyStyle = nil
		clear(d.dirtySet)
		for _, n := range dirty {
			n.commit()
		}
	}
}

// Layout commits pending styles and resolves the size of every attached node.
func (d *Document) Layout() {
	d.CommitStyles()
	d.layoutNode(d.root)
	d.needsLayout = false
}

// layoutNode uses a single-cell overlay model: every child is placed at the
// origin, and a node's natural size covers its own content and its children.
func (d *Document) layoutNode(n *Node) graphics.Size {
	natural := n.intrinsic
	for _, child := range n.children {
		natural = natural.Max(d.layoutNode(child))
	}
	n.natural = natural

	size := natural
	computed := n.ComputedStyle()
	if !computed.MaxWidth.IsNone() && size.Width > computed.MaxWidth.Value() {
		size.Width = computed.MaxWidth.Value()
	}
	if !computed.MaxHeight.IsNone() && size.Height > computed.MaxHeight.Value() {
		size.Height = computed.MaxHeight.Value()
	}
	n.size = size.Max(n.minSize)
	return n.size
}

// Find returns the attached node with the given id.
func (d *Document) Find(id NodeID) (*Node, bool) {
	var found *Node
	d.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}
