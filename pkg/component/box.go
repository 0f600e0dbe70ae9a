package component

import (
	"github.com/go-drift/switcher/pkg/graphics"
	"github.com/go-drift/switcher/pkg/tree"
)

// BoxTag is the node tag used by Box components.
const BoxTag = "box"

// Box is a leaf component with a fixed content size.
type Box struct {
	id    ID
	node  *tree.Node
	label string
}

// NewBox registers a box of the given natural size. The label is carried as
// a class so the box is recognisable in dumps and snapshots.
func NewBox(reg *Registry, doc *tree.Document, label string, size graphics.Size) *Box {
	return reg.Register(func(id ID) Component {
		n := doc.NewNode(BoxTag)
		n.SetIntrinsicSize(size)
		if label != "" {
			n.AddClass(label)
		}
		return &Box{id: id, node: n, label: label}
	}).(*Box)
}

func (b *Box) ID() ID { return b.id }

func (b *Box) Node() *tree.Node { return b.node }

// Label returns the box's display label.
func (b *Box) Label() string { return b.label }

// Resize changes the box's natural size.
func (b *Box) Resize(size graphics.Size) {
	b.node.SetIntrinsicSize(size)
}
