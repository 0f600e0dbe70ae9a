// Package trace replays a scenario against a live switcher.
//
// A Player owns its own registry, document and scheduler. In virtual mode the
// scheduler runs on a VirtualClock and waits advance it event by event, so a
// replay is deterministic and instant. In realtime mode the scheduler loop
// runs on its own goroutine against the wall clock and steps are posted to it.
package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-drift/switcher/cmd/switchtrace/internal/render"
	"github.com/go-drift/switcher/cmd/switchtrace/internal/scenario"
	"github.com/go-drift/switcher/pkg/animation"
	"github.com/go-drift/switcher/pkg/component"
	drifterrors "github.com/go-drift/switcher/pkg/errors"
	"github.com/go-drift/switcher/pkg/scheduler"
	"github.com/go-drift/switcher/pkg/switcher"
	"github.com/go-drift/switcher/pkg/tree"
)

// SettleTimeout bounds "wait: settle" steps and the final settle.
const SettleTimeout = 30 * time.Second

// ErrNotSettled is returned when the switcher is still busy after SettleTimeout.
var ErrNotSettled = errors.New("trace: scheduler did not settle")

// unknownID is never allocated by a registry.
const unknownID = component.ID(math.MaxUint64)

// Options configures a Player.
type Options struct {
	Transition    time.Duration
	Curve         func(float64) float64
	FrameInterval time.Duration
	// Realtime replays against the wall clock instead of virtual time.
	Realtime bool
	// FramesDir, if set, receives one PNG per rendered frame.
	FramesDir string
	// FramePrefix names the PNG files. Empty means "frame".
	FramePrefix string
	// FrameScale is the zoom factor of the PNG frames.
	FrameScale int
	// Out receives the trace. Nil discards it.
	Out io.Writer
}

// Player replays one scenario.
type Player struct {
	sc   *scenario.Scenario
	opts Options
	out  io.Writer

	registry *component.Registry
	doc      *tree.Document
	sched    *scheduler.Scheduler
	sw       *switcher.Switcher
	boxes    map[string]*component.Box

	start     time.Time
	frames    int
	renderErr error
}

// New builds the environment for sc. Nothing runs until Play.
func New(sc *scenario.Scenario, opts Options) *Player {
	p := &Player{
		sc:       sc,
		opts:     opts,
		out:      opts.Out,
		registry: component.NewRegistry(),
		doc:      tree.NewDocument(),
		boxes:    make(map[string]*component.Box, len(sc.Boxes)),
	}
	if p.out == nil {
		p.out = io.Discard
	}
	if sc.Transition != nil {
		p.opts.Transition = *sc.Transition
	}
	return p
}

// Frames returns the number of frames rendered to FramesDir.
func (p *Player) Frames() int { return p.frames }

// Switcher returns the switcher under replay. It is nil before Play.
func (p *Player) Switcher() *switcher.Switcher { return p.sw }

// Box returns the named box. It is nil before Play.
func (p *Player) Box(name string) *component.Box { return p.boxes[name] }

// Registry returns the player's component registry.
func (p *Player) Registry() *component.Registry { return p.registry }

// Document returns the replayed document.
func (p *Player) Document() *tree.Document { return p.doc }

// Play replays every step and then lets the switcher settle.
func (p *Player) Play(ctx context.Context) error {
	var clock animation.Clock = animation.SystemClock
	if !p.opts.Realtime {
		clock = scheduler.NewVirtualClock(time.Unix(0, 0))
	}
	prevClock := animation.SetClock(clock)
	prevHandler := drifterrors.SetHandler(&drifterrors.LogHandler{Out: p.out})
	defer func() {
		animation.StopAllTickers()
		animation.SetClock(prevClock)
		drifterrors.SetHandler(prevHandler)
	}()

	p.sched = scheduler.New(
		scheduler.WithClock(clock),
		scheduler.WithFrameInterval(p.opts.FrameInterval),
		scheduler.WithLayouter(frameLayouter{p}),
	)
	p.start = clock.Now()
	p.build()

	name, mode := p.sc.Name, "virtual"
	if name == "" {
		name = "(unnamed)"
	}
	if p.opts.Realtime {
		mode = "realtime"
	}
	fmt.Fprintf(p.out, "scenario %s: %d steps, transition %s, %s time\n",
		name, len(p.sc.Steps), p.opts.Transition, mode)

	if p.opts.Realtime {
		loopCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- p.sched.Run(loopCtx) }()
		defer func() {
			cancel()
			<-done
		}()
	}

	for i, step := range p.sc.Steps {
		if err := p.play(ctx, i+1, step); err != nil {
			return fmt.Errorf("step %d (line %d, %s): %w", i+1, step.Line, step, err)
		}
		var renderErr error
		if err := p.onLoop(ctx, func() { renderErr = p.renderErr }); err != nil {
			return err
		}
		if renderErr != nil {
			return renderErr
		}
	}

	if err := p.settle(ctx); err != nil {
		return err
	}
	return p.onLoop(ctx, func() {
		fmt.Fprintf(p.out, "%s settled\n", p.stamp())
		p.dump()
	})
}

func (p *Player) build() {
	p.sw = switcher.New(p.registry, p.sched, p.doc, switcher.Options{
		TransitionTime: p.opts.Transition,
		Curve:          p.opts.Curve,
		Footprint:      p.sc.Footprint,
		Observer:       switcher.ObserverFunc(p.onPhase),
	})
	p.doc.Root().AppendChild(p.sw.Node())
	for _, name := range p.sc.BoxNames() {
		p.boxes[name] = component.NewBox(p.registry, p.doc, name, p.sc.Boxes[name])
	}
}

func (p *Player) play(ctx context.Context, n int, step scenario.Step) error {
	if step.Kind == scenario.Wait {
		if err := p.wait(ctx, step); err != nil {
			return err
		}
		return p.onLoop(ctx, func() {
			fmt.Fprintf(p.out, "%s step %d: %s\n", p.stamp(), n, step)
			p.dump()
		})
	}
	return p.onLoop(ctx, func() {
		fmt.Fprintf(p.out, "%s step %d: %s\n", p.stamp(), n, step)
		p.apply(step)
		p.dump()
	})
}

// apply runs a non-wait step. It must run on the scheduler's goroutine.
// Unresolvable content is reported through the error handler and does not
// stop the replay.
func (p *Player) apply(step scenario.Step) {
	switch step.Kind {
	case scenario.Show:
		p.swap(p.boxes[step.Box].ID().Ptr())
	case scenario.Clear:
		p.swap(nil)
	case scenario.Unknown:
		p.swap(unknownID.Ptr())
	case scenario.SetTransition:
		p.sw.SetTransitionTime(step.Duration)
	case scenario.SetFootprint:
		p.sw.SetFootprint(step.Size)
	case scenario.Resize:
		p.boxes[step.Box].Resize(step.Size)
	}
}

// swap updates the switcher in one reconciliation pass. Boxes are owned by
// the player, so any box left latent is parked instead of destroyed.
func (p *Player) swap(id *component.ID) {
	_ = p.registry.Reconcile(func(latent *component.LatentSet) error {
		err := p.sw.UpdateContent(latent, id)
		for _, box := range p.boxes {
			latent.Remove(box.ID())
		}
		return err
	})
}

func (p *Player) wait(ctx context.Context, step scenario.Step) error {
	if step.Settle {
		return p.settle(ctx)
	}
	if !p.opts.Realtime {
		return p.sched.Advance(step.Duration)
	}
	t := time.NewTimer(step.Duration)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) settle(ctx context.Context) error {
	if !p.opts.Realtime {
		settled, err := p.sched.Settle(SettleTimeout)
		if err != nil {
			return err
		}
		if !settled {
			return ErrNotSettled
		}
		return nil
	}

	deadline := time.Now().Add(SettleTimeout)
	for time.Now().Before(deadline) {
		var idle bool
		if err := p.onLoop(ctx, func() { idle = p.sched.Idle() }); err != nil {
			return err
		}
		if idle {
			return nil
		}
		select {
		case <-time.After(p.sched.FrameInterval()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ErrNotSettled
}

// onLoop runs fn on the scheduler's goroutine and waits for it. In virtual
// mode the caller is that goroutine.
func (p *Player) onLoop(ctx context.Context, fn func()) error {
	if !p.opts.Realtime {
		fn()
		return nil
	}
	ran := make(chan struct{})
	p.sched.Post(func() {
		defer close(ran)
		fn()
	})
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) onPhase(container *tree.Node, phase switcher.Phase) {
	fmt.Fprintf(p.out, "%s   %s#%d %s\n", p.stamp(), container.Tag(), container.ID(), phase)
}

func (p *Player) stamp() string {
	elapsed := p.sched.Now().Sub(p.start).Round(time.Millisecond)
	return fmt.Sprintf("[%7s]", elapsed)
}

func (p *Player) dump() {
	for _, line := range strings.Split(strings.TrimRight(p.sw.Node().Dump(), "\n"), "\n") {
		fmt.Fprintf(p.out, "          %s\n", line)
	}
}

// frameLayouter lays the document out and, when frames are requested,
// renders the switcher after every layout.
type frameLayouter struct{ p *Player }

func (l frameLayouter) NeedsLayout() bool { return l.p.doc.NeedsLayout() }

func (l frameLayouter) Layout() {
	p := l.p
	p.doc.Layout()
	if p.opts.FramesDir == "" || p.renderErr != nil {
		return
	}
	p.frames++
	prefix := p.opts.FramePrefix
	if prefix == "" {
		prefix = "frame"
	}
	img := render.Draw(p.sw.Node(), render.Options{
		Scale: p.opts.FrameScale,
		Title: fmt.Sprintf("%s %s", prefix, p.sched.Now().Sub(p.start).Round(time.Millisecond)),
	})
	path := filepath.Join(p.opts.FramesDir, fmt.Sprintf("%s-%04d.png", prefix, p.frames))
	if err := render.WritePNG(path, img); err != nil {
		p.renderErr = drifterrors.ReportError("trace.frame", drifterrors.KindScheduler, err)
	}
}
