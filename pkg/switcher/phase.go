package switcher

// Phase is the lifecycle state of one active child container.
//
// Enter path: PhaseCollapsed -> PhasePendingMeasure -> PhaseGrowing -> PhaseSettled.
// Exit path: any enter phase -> PhaseShrinking -> PhaseRemoved.
//
// A container never moves backwards. A superseded container stays in
// whatever phase it reached until its exit cleanup removes it.
type Phase int

const (
	// PhaseCollapsed is a freshly created container pinned to zero size.
	PhaseCollapsed Phase = iota
	// PhasePendingMeasure means the child is attached and the container waits
	// for the next layout frame to measure it.
	PhasePendingMeasure
	// PhaseGrowing means the container animates toward the measured size.
	PhaseGrowing
	// PhaseSettled means size constraints have been released.
	PhaseSettled
	// PhaseShrinking means the container holds a snapshot and collapses.
	PhaseShrinking
	// PhaseRemoved means the container has left the tree.
	PhaseRemoved
)

func (p Phase) String() string {
	switch p {
	case PhaseCollapsed:
		return "collapsed"
	case PhasePendingMeasure:
		return "pending-measure"
	case PhaseGrowing:
		return "growing"
	case PhaseSettled:
		return "settled"
	case PhaseShrinking:
		return "shrinking"
	case PhaseRemoved:
		return "removed"
	default:
		return "unknown"
	}
}
