// Package switcher implements a single-slot container whose child morphs its
// size when the displayed content is swapped.
//
// The switcher holds at most one live child, wrapped in an active container
// node. A swap is performed in two halves:
//
//   - exit: the outgoing child is replaced by an inert snapshot of its last
//     rendered appearance, the live child is handed back to the reconciliation
//     pass through the latent set, and the container shrinks to zero before it
//     is removed
//   - enter: a fresh container is mounted collapsed, the new child is attached,
//     and on the next layout frame the container grows to the child's natural
//     size (never below the switcher's own footprint), after which its size
//     constraints are released
//
// Deferred work is never cancelled. Enter callbacks carry the container and
// swap generation they were scheduled for and do nothing once superseded;
// exit cleanup only removes its own container.
//
// Example:
//
//	reg := component.NewRegistry()
//	doc := tree.NewDocument()
//	sched := scheduler.New(scheduler.WithLayouter(doc))
//	sw := switcher.New(reg, sched, doc, switcher.Options{
//	    TransitionTime: 300 * time.Millisecond,
//	})
//	doc.Root().AppendChild(sw.Node())
//
//	page := component.NewBox(reg, doc, "page", graphics.Size{Width: 200, Height: 80})
//	_ = reg.Reconcile(func(latent *component.LatentSet) error {
//	    return sw.UpdateContent(latent, page.ID().Ptr())
//	})
package switcher
