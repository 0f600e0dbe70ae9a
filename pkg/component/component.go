// Package component provides component identity, the registry that resolves
// identifiers to live instances, and the latent-set protocol used to move
// components between parents without rebuilding them.
//
// A component is addressed by its [ID], never by a cached pointer: a
// reconciliation pass may relocate a component to another parent at any
// time, and [Registry.Resolve] always returns the authoritative instance.
package component

import (
	"errors"
	"fmt"

	"github.com/go-drift/switcher/pkg/tree"
)

// ID identifies a live component. IDs are allocated monotonically and never
// reused while the component is registered.
type ID uint64

func (id ID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// Ptr returns a pointer to a copy of id. It is a convenience for passing
// optional identifiers.
func (id ID) Ptr() *ID {
	return &id
}

// ErrUnknownID is returned when an identifier does not resolve to a live component.
var ErrUnknownID = errors.New("unknown component id")

// Component is a live instance with a stable identity and a root node in the
// visual tree.
type Component interface {
	ID() ID
	Node() *tree.Node
}

// Resolver looks components up by identifier.
type Resolver interface {
	Resolve(id ID) (Component, bool)
}

// Destroyer is implemented by components that release resources when the
// registry destroys them.
type Destroyer interface {
	Destroy()
}

// OwnerOf returns the component whose root node is n, if any.
func OwnerOf(n *tree.Node) (Component, bool) {
	if n == nil {
		return nil, false
	}
	c, ok := n.Owner().(Component)
	return c, ok
}
