// Package scenario parses switchtrace scenario files.
//
// A scenario declares the boxes available as content, the switcher's
// footprint, and a list of steps:
//
//	name: page-swap
//	transition: 300ms
//	footprint: {width: 150, height: 60}
//	boxes:
//	  a: {width: 100, height: 50}
//	  b: {width: 200, height: 80}
//	steps:
//	  - show: a
//	  - wait: settle
//	  - show: b
//	  - wait: 150ms
//	  - resize: {box: b, width: 240, height: 80}
//	  - clear: true
//	  - wait: 300ms
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/switcher/pkg/graphics"
)

// Kind identifies what a step does.
type Kind int

const (
	// Show swaps in the named box.
	Show Kind = iota
	// Clear swaps in nothing.
	Clear
	// Wait advances time by a duration, or until idle.
	Wait
	// SetTransition changes the transition time for later swaps.
	SetTransition
	// SetFootprint changes the switcher's own minimum size.
	SetFootprint
	// Resize changes a box's natural size.
	Resize
	// Unknown is the content id that never resolves; it exercises the
	// unresolvable-content path.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Show:
		return "show"
	case Clear:
		return "clear"
	case Wait:
		return "wait"
	case SetTransition:
		return "transition"
	case SetFootprint:
		return "footprint"
	case Resize:
		return "resize"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Size is a width/height pair as written in scenario files.
type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Graphics converts s to a graphics.Size.
func (s Size) Graphics() graphics.Size {
	return graphics.Size{Width: s.Width, Height: s.Height}
}

// Scenario is a parsed scenario file.
type Scenario struct {
	Name       string
	Transition *time.Duration
	Footprint  graphics.Size
	Boxes      map[string]graphics.Size
	Steps      []Step
}

// BoxNames returns the declared box names in sorted order.
func (s *Scenario) BoxNames() []string {
	names := make([]string, 0, len(s.Boxes))
	for name := range s.Boxes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Step is one validated action.
type Step struct {
	Line     int
	Kind     Kind
	Box      string
	Duration time.Duration
	Settle   bool
	Size     graphics.Size
}

func (s Step) String() string {
	switch s.Kind {
	case Show:
		return "show " + s.Box
	case Wait:
		if s.Settle {
			return "wait settle"
		}
		return "wait " + s.Duration.String()
	case SetTransition:
		return "transition " + s.Duration.String()
	case SetFootprint:
		return "footprint " + s.Size.String()
	case Resize:
		return fmt.Sprintf("resize %s %s", s.Box, s.Size)
	default:
		return s.Kind.String()
	}
}

type fileFormat struct {
	Name       string          `yaml:"name"`
	Transition string          `yaml:"transition"`
	Footprint  *Size           `yaml:"footprint"`
	Boxes      map[string]Size `yaml:"boxes"`
	Steps      []rawStep       `yaml:"steps"`
}

type resizeStep struct {
	Box    string  `yaml:"box"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type rawStep struct {
	line int

	Show       *string     `yaml:"show"`
	Clear      bool        `yaml:"clear"`
	Wait       *string     `yaml:"wait"`
	Transition *string     `yaml:"transition"`
	Footprint  *Size       `yaml:"footprint"`
	Resize     *resizeStep `yaml:"resize"`
	Unknown    bool        `yaml:"unknown"`
}

func (r *rawStep) UnmarshalYAML(value *yaml.Node) error {
	type plain rawStep
	if err := value.Decode((*plain)(r)); err != nil {
		return err
	}
	r.line = value.Line
	return nil
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid scenario")

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse parses scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var f fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	sc := &Scenario{
		Name:  strings.TrimSpace(f.Name),
		Boxes: make(map[string]graphics.Size, len(f.Boxes)),
	}
	if f.Transition != "" {
		d, err := parseDuration(f.Transition)
		if err != nil {
			return nil, invalid(0, "transition: %v", err)
		}
		sc.Transition = &d
	}
	if f.Footprint != nil {
		if err := checkSize(*f.Footprint); err != nil {
			return nil, invalid(0, "footprint: %v", err)
		}
		sc.Footprint = f.Footprint.Graphics()
	}
	for name, size := range f.Boxes {
		if err := checkSize(size); err != nil {
			return nil, invalid(0, "box %q: %v", name, err)
		}
		sc.Boxes[name] = size.Graphics()
	}
	if len(f.Steps) == 0 {
		return nil, invalid(0, "no steps")
	}
	for _, raw := range f.Steps {
		step, err := sc.validate(raw)
		if err != nil {
			return nil, err
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func (sc *Scenario) validate(raw rawStep) (Step, error) {
	step := Step{Line: raw.line}
	actions := 0
	if raw.Show != nil {
		actions++
		step.Kind, step.Box = Show, strings.TrimSpace(*raw.Show)
		if _, ok := sc.Boxes[step.Box]; !ok {
			return step, invalid(raw.line, "show: unknown box %q", step.Box)
		}
	}
	if raw.Clear {
		actions++
		step.Kind = Clear
	}
	if raw.Unknown {
		actions++
		step.Kind = Unknown
	}
	if raw.Wait != nil {
		actions++
		step.Kind = Wait
		if strings.TrimSpace(*raw.Wait) == "settle" {
			step.Settle = true
		} else {
			d, err := parseDuration(*raw.Wait)
			if err != nil {
				return step, invalid(raw.line, "wait: %v", err)
			}
			step.Duration = d
		}
	}
	if raw.Transition != nil {
		actions++
		step.Kind = SetTransition
		d, err := parseDuration(*raw.Transition)
		if err != nil {
			return step, invalid(raw.line, "transition: %v", err)
		}
		step.Duration = d
	}
	if raw.Footprint != nil {
		actions++
		step.Kind = SetFootprint
		if err := checkSize(*raw.Footprint); err != nil {
			return step, invalid(raw.line, "footprint: %v", err)
		}
		step.Size = raw.Footprint.Graphics()
	}
	if raw.Resize != nil {
		actions++
		step.Kind, step.Box = Resize, strings.TrimSpace(raw.Resize.Box)
		if _, ok := sc.Boxes[step.Box]; !ok {
			return step, invalid(raw.line, "resize: unknown box %q", step.Box)
		}
		size := Size{Width: raw.Resize.Width, Height: raw.Resize.Height}
		if err := checkSize(size); err != nil {
			return step, invalid(raw.line, "resize: %v", err)
		}
		step.Size = size.Graphics()
	}
	if actions != 1 {
		return step, invalid(raw.line, "a step needs exactly one action, got %d", actions)
	}
	return step, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

func checkSize(s Size) error {
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("negative size %gx%g", s.Width, s.Height)
	}
	return nil
}

func invalid(line int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		return fmt.Errorf("%w: line %d: %s", ErrInvalid, line, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}
