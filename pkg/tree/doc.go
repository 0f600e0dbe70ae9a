// Package tree implements the retained visual tree that components render
// into.
//
// Nodes form an ordered tree owned by a [Document]. Structure and classes
// change immediately; the max-size style properties are written as pending
// values and only become effective when the document commits styles. A
// committed change on an attached node with a [Transition] animates from the
// value observed at the previous commit, so callers that need an animation
// must commit the starting value first:
//
//	slot.SetMaxSize(graphics.SizeZero)
//	doc.CommitStyles() // observe the collapsed size
//	slot.SetMaxSize(target)
//
// Writing both values inside the same uncommitted batch jumps straight to
// the target. [None] never interpolates.
//
// Layout uses a single-cell overlay model: every child sits at the origin,
// and a node's size is its natural content size clamped by its computed
// max-size and raised to its minimum footprint.
package tree
