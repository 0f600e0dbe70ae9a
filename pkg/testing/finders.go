package testing

import (
	"fmt"
	"slices"

	"github.com/go-drift/switcher/pkg/component"
	"github.com/go-drift/switcher/pkg/tree"
)

// Finder locates nodes in the visual tree.
type Finder interface {
	// Evaluate returns all matching nodes under root (depth-first pre-order).
	Evaluate(root *tree.Node) []*tree.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*tree.Node
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *tree.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *tree.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *tree.Node {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.description()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*tree.Node {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// predicateFinder matches nodes satisfying a predicate.
type predicateFinder struct {
	fn   func(*tree.Node) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *tree.Node) []*tree.Node {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByTag returns a finder that matches nodes with the given tag.
func ByTag(tag string) Finder {
	return &predicateFinder{
		fn:   func(n *tree.Node) bool { return n.Tag() == tag },
		desc: fmt.Sprintf("ByTag(%q)", tag),
	}
}

// ByClass returns a finder that matches nodes carrying the given class.
func ByClass(class string) Finder {
	return &predicateFinder{
		fn:   func(n *tree.Node) bool { return n.HasClass(class) },
		desc: fmt.Sprintf("ByClass(%q)", class),
	}
}

// ByComponent returns a finder that matches the root node of the component
// with the given id.
func ByComponent(id component.ID) Finder {
	return &predicateFinder{
		fn: func(n *tree.Node) bool {
			c, ok := component.OwnerOf(n)
			return ok && c.ID() == id
		},
		desc: fmt.Sprintf("ByComponent(%v)", id),
	}
}

// Snapshots returns a finder that matches the roots of inert snapshots.
func Snapshots() Finder {
	return &predicateFinder{
		fn: func(n *tree.Node) bool {
			return n.Inert() && (n.Parent() == nil || !n.Parent().Inert())
		},
		desc: "Snapshots()",
	}
}

// ByPredicate returns a finder that matches nodes satisfying fn.
func ByPredicate(fn func(*tree.Node) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds nodes matching 'matching' that are descendants of
// nodes matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *tree.Node) []*tree.Node {
	var results []*tree.Node
	for _, ancestor := range f.of.Evaluate(root) {
		for _, child := range ancestor.Children() {
			for _, match := range f.matching.Evaluate(child) {
				if !slices.Contains(results, match) {
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches nodes satisfying 'matching' that
// are descendants of nodes matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// collectMatches performs depth-first pre-order traversal, collecting nodes
// that satisfy the predicate.
func collectMatches(root *tree.Node, predicate func(*tree.Node) bool) []*tree.Node {
	var results []*tree.Node
	root.Walk(func(n *tree.Node) bool {
		if predicate(n) {
			results = append(results, n)
		}
		return true
	})
	return results
}
