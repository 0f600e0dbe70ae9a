package tree

import (
	"fmt"
	"strings"

	"github.com/go-drift/switcher/pkg/graphics"
)

// Description is a value snapshot of a subtree, suitable for comparing in
// tests and printing from tools.
type Description struct {
	Tag       string
	Classes   []string
	Inert     bool
	Size      graphics.Size
	MaxWidth  string
	MaxHeight string
	Children  []Description
}

// Describe captures the subtree rooted at n. Max-size values are the
// declared ones; unconstrained properties are left empty.
func (n *Node) Describe() Description {
	d := Description{
		Tag:     n.tag,
		Classes: n.Classes(),
		Inert:   n.inert,
		Size:    n.size,
	}
	if len(d.Classes) == 0 {
		d.Classes = nil
	}
	if !n.pending.MaxWidth.IsNone() {
		d.MaxWidth = n.pending.MaxWidth.String()
	}
	if !n.pending.MaxHeight.IsNone() {
		d.MaxHeight = n.pending.MaxHeight.String()
	}
	for _, child := range n.children {
		d.Children = append(d.Children, child.Describe())
	}
	return d
}

// Dump renders the subtree as an indented outline, one node per line:
//
//	switcher [150x60]
//	  switcher-child.active max=200px,80px [200x80]
//	    box [200x80]
func (n *Node) Dump() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.tag)
	for _, class := range n.classes {
		sb.WriteByte('.')
		sb.WriteString(class)
	}
	if n.inert {
		sb.WriteString(" (snapshot)")
	}
	if n.HasMaxSize() {
		fmt.Fprintf(sb, " max=%s,%s", n.pending.MaxWidth, n.pending.MaxHeight)
	}
	fmt.Fprintf(sb, " [%s]\n", n.size)
	for _, child := range n.children {
		child.dump(sb, indent+1)
	}
}
