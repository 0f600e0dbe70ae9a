package component

import (
	"fmt"

	"github.com/go-drift/switcher/pkg/tree"
)

// ReplaceOnlyChild makes the component identified by childID the only child
// of parent, following the latent protocol:
//
//   - every other child component of parent is detached and added to latent,
//     so the pass may reuse it elsewhere; plain nodes are simply removed
//   - the requested component is taken out of latent and moved under parent
//     from wherever it currently lives
//
// A nil childID empties parent. If the component already is parent's only
// child nothing changes. An unresolvable childID leaves parent empty and
// returns an error wrapping ErrUnknownID.
func ReplaceOnlyChild(r Resolver, latent *LatentSet, parent *tree.Node, childID *ID) error {
	var want Component
	var resolveErr error
	if childID != nil {
		if c, ok := r.Resolve(*childID); ok {
			want = c
		} else {
			resolveErr = fmt.Errorf("attach %v: %w", *childID, ErrUnknownID)
		}
	}

	children := parent.Children()
	if want != nil && len(children) == 1 && children[0] == want.Node() {
		latent.Remove(want.ID())
		return nil
	}

	for _, child := range children {
		if c, ok := OwnerOf(child); ok && (want == nil || c.ID() != want.ID()) {
			latent.Add(c)
		}
		parent.RemoveChild(child)
	}

	if want == nil {
		return resolveErr
	}
	latent.Remove(want.ID())
	parent.AppendChild(want.Node())
	return nil
}
