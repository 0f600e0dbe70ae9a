package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/switcher/pkg/animation"
	"github.com/go-drift/switcher/pkg/scheduler"
)

// FileName is the optional per-project configuration file.
const FileName = "switchtrace.yaml"

// Defaults applied when the configuration leaves a value empty.
const (
	DefaultTransition = 300 * time.Millisecond
	DefaultCurve      = "ease"
)

// Config represents the optional switchtrace.yaml configuration.
type Config struct {
	Switcher  SwitcherConfig  `yaml:"switcher"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Trace     TraceConfig     `yaml:"trace"`
}

// SwitcherConfig contains transition settings.
type SwitcherConfig struct {
	Transition string `yaml:"transition,omitempty"`
	Curve      string `yaml:"curve,omitempty"`
}

// SchedulerConfig contains event loop settings.
type SchedulerConfig struct {
	Frame string `yaml:"frame,omitempty"`
}

// TraceConfig contains output settings.
type TraceConfig struct {
	Name string `yaml:"name,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root          string
	ModulePath    string
	TraceName     string
	Transition    time.Duration
	CurveName     string
	Curve         func(float64) float64
	FrameInterval time.Duration
}

// LoadOptional reads switchtrace.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads switchtrace.yaml (if present) and resolves defaults. A
// missing go.mod is not an error; the trace name then falls back to the
// directory name.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	traceName := strings.TrimSpace(cfg.Trace.Name)
	if traceName == "" {
		traceName = defaultTraceName(modulePath, dir)
	}
	traceName = SanitizeName(traceName)

	transition, err := parseDuration("switcher.transition", cfg.Switcher.Transition, DefaultTransition)
	if err != nil {
		return nil, err
	}

	curveName := strings.TrimSpace(cfg.Switcher.Curve)
	if curveName == "" {
		curveName = DefaultCurve
	}
	curve, err := animation.ParseCurve(curveName)
	if err != nil {
		return nil, fmt.Errorf("switcher.curve: %w", err)
	}

	frame, err := parseDuration("scheduler.frame", cfg.Scheduler.Frame, scheduler.DefaultFrameInterval)
	if err != nil {
		return nil, err
	}
	if frame == 0 {
		return nil, fmt.Errorf("scheduler.frame must be positive")
	}

	return &Resolved{
		Root:          dir,
		ModulePath:    modulePath,
		TraceName:     traceName,
		Transition:    transition,
		CurveName:     curveName,
		Curve:         curve,
		FrameInterval: frame,
	}, nil
}

// FindProjectRoot walks up from the current directory to find go.mod. If
// there is none, the current directory is returned.
func FindProjectRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func parseDuration(key, value string, def time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative (got %s)", key, value)
	}
	return d, nil
}

func defaultTraceName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "trace"
	}
	return base
}

// SanitizeName reduces name to lowercase letters, digits, '-' and '_' so it
// is safe to use in file names. An empty result becomes "trace".
func SanitizeName(name string) string {
	var out []rune
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '.' || r == '/':
			out = append(out, '-')
		}
	}
	if name := strings.Trim(string(out), "-"); name != "" {
		return name
	}
	return "trace"
}
