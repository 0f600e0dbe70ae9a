package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-drift/switcher/pkg/animation"
	drifterrors "github.com/go-drift/switcher/pkg/errors"
)

// DefaultFrameInterval is the frame period used when none is configured.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrNotManual is returned by Advance when the scheduler's clock cannot be
// moved by hand.
var ErrNotManual = errors.New("scheduler: clock does not support Advance")

// ManualClock is a clock that tests move forward explicitly.
type ManualClock interface {
	animation.Clock
	Advance(d time.Duration)
}

// Layouter resolves pending style and layout work once per frame.
// *tree.Document implements it.
type Layouter interface {
	NeedsLayout() bool
	Layout()
}

// Pending counts the outstanding work of a scheduler.
type Pending struct {
	Tasks  int
	Timers int
	Frames int
}

// Scheduler is a cooperative single-threaded event loop. Post may be called
// from any goroutine; every other method must run on the loop's goroutine.
type Scheduler struct {
	clock         animation.Clock
	frameInterval time.Duration
	layouter      Layouter

	mu     sync.Mutex
	posted []func()
	timers timerQueue
	frames []func()
	seq    uint64
	wake   chan struct{}

	lastFrame  time.Time
	frameCount uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source. The default is the animation package clock.
func WithClock(c animation.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithFrameInterval sets the frame period. Non-positive values keep the default.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.frameInterval = d
		}
	}
}

// WithLayouter sets the document laid out at the start of every frame.
func WithLayouter(l Layouter) Option {
	return func(s *Scheduler) { s.layouter = l }
}

// New creates a scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:         clockFunc(animation.Now),
		frameInterval: DefaultFrameInterval,
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// FrameInterval returns the frame period.
func (s *Scheduler) FrameInterval() time.Duration { return s.frameInterval }

// FrameCount returns how many frames have run.
func (s *Scheduler) FrameCount() uint64 { return s.frameCount }

// Post queues fn to run on the next loop turn.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
	s.signal()
}

// AfterFunc schedules fn to run once d has elapsed. Timers with the same due
// time run in the order they were scheduled. Negative delays count as zero.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	s.seq++
	s.timers.push(&timer{due: s.clock.Now().Add(d), seq: s.seq, fn: fn})
	s.mu.Unlock()
	s.signal()
}

// RequestFrame schedules fn to run during the next frame, after layout.
// Callbacks requested while a frame is running wait for the following frame.
func (s *Scheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	s.frames = append(s.frames, fn)
	s.mu.Unlock()
	s.signal()
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending reports the outstanding work.
func (s *Scheduler) Pending() Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Pending{Tasks: len(s.posted), Timers: len(s.timers), Frames: len(s.frames)}
}

// Idle reports whether no tasks, timers, frame callbacks or transitions remain.
func (s *Scheduler) Idle() bool {
	p := s.Pending()
	return p.Tasks == 0 && p.Timers == 0 && p.Frames == 0 && !s.wantsFrame()
}

// RunDue runs posted tasks and every timer whose due time has passed, until
// none remain. It returns the number of callbacks run.
func (s *Scheduler) RunDue() int {
	ran := 0
	for {
		s.mu.Lock()
		posted := s.posted
		s.posted = nil
		var due *timer
		if len(posted) == 0 {
			if t, ok := s.timers.peek(); ok && !t.due.After(s.clock.Now()) {
				due = s.timers.pop()
			}
		}
		s.mu.Unlock()

		switch {
		case len(posted) > 0:
			for _, fn := range posted {
				run("scheduler.task", fn)
			}
			ran += len(posted)
		case due != nil:
			run("scheduler.timer", due.fn)
			ran++
		default:
			return ran
		}
	}
}

// Frame runs one frame: tickers step, the layouter lays out, then the frame
// callbacks requested before the frame began run in order.
func (s *Scheduler) Frame() {
	s.lastFrame = s.clock.Now()
	s.frameCount++

	s.mu.Lock()
	callbacks := s.frames
	s.frames = nil
	s.mu.Unlock()

	animation.StepTickers()
	if s.layouter != nil {
		run("scheduler.layout", s.layouter.Layout)
	}
	for _, fn := range callbacks {
		run("scheduler.frame", fn)
	}
}

// wantsFrame reports whether a frame would do any work.
func (s *Scheduler) wantsFrame() bool {
	s.mu.Lock()
	frames := len(s.frames)
	s.mu.Unlock()
	if frames > 0 || animation.HasActiveTickers() {
		return true
	}
	return s.layouter != nil && s.layouter.NeedsLayout()
}

// nextFrameTime returns when the next frame is allowed to run.
func (s *Scheduler) nextFrameTime(now time.Time) time.Time {
	if s.lastFrame.IsZero() {
		return now
	}
	next := s.lastFrame.Add(s.frameInterval)
	if next.Before(now) {
		return now
	}
	return next
}

// nextEvent returns the time of the next timer or frame and whether that
// event is a frame. ok is false when nothing is scheduled.
func (s *Scheduler) nextEvent(now time.Time) (at time.Time, frame, ok bool) {
	s.mu.Lock()
	t, hasTimer := s.timers.peek()
	s.mu.Unlock()
	if hasTimer {
		at, ok = t.due, true
	}
	if s.wantsFrame() {
		if f := s.nextFrameTime(now); !ok || f.Before(at) {
			at, frame, ok = f, true, true
		}
	}
	return at, frame, ok
}

// Advance moves a manual clock forward by d, running every timer and frame
// that falls inside the window at its own instant.
func (s *Scheduler) Advance(d time.Duration) error {
	clk, ok := s.clock.(ManualClock)
	if !ok {
		return ErrNotManual
	}
	end := clk.Now().Add(d)
	for {
		s.RunDue()
		now := clk.Now()
		at, frame, ok := s.nextEvent(now)
		if !ok || at.After(end) {
			break
		}
		if at.After(now) {
			clk.Advance(at.Sub(now))
		}
		if frame {
			s.Frame()
		}
	}
	if now := clk.Now(); end.After(now) {
		clk.Advance(end.Sub(now))
	}
	s.RunDue()
	return nil
}

// Settle advances frame by frame until the scheduler is idle or timeout
// elapses. It reports whether the scheduler settled.
func (s *Scheduler) Settle(timeout time.Duration) (bool, error) {
	var elapsed time.Duration
	for elapsed <= timeout {
		if err := s.Advance(0); err != nil {
			return false, err
		}
		if s.Idle() {
			return true, nil
		}
		if err := s.Advance(s.frameInterval); err != nil {
			return false, err
		}
		elapsed += s.frameInterval
	}
	return s.Idle(), nil
}

// Run drives the loop in real time until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		s.RunDue()
		now := s.clock.Now()
		at, frame, ok := s.nextEvent(now)
		if ok && !at.After(now) {
			if frame {
				s.Frame()
			}
			continue
		}

		var (
			wait  <-chan time.Time
			timer *time.Timer
		)
		if ok {
			timer = time.NewTimer(at.Sub(now))
			wait = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-s.wake:
		case <-wait:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func run(op string, fn func()) {
	defer drifterrors.Recover(op)
	fn()
}
