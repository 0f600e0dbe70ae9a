package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-drift/switcher/cmd/switchtrace/internal/config"
	"github.com/go-drift/switcher/cmd/switchtrace/internal/scenario"
	"github.com/go-drift/switcher/cmd/switchtrace/internal/trace"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Replay a scenario and print the tree after every step",
		Long: `Replay a scenario file against a switcher.

Each step is printed with its timestamp, followed by every container phase
change it causes and the switcher's tree afterwards. When the steps are done
the switcher is left to settle and the final tree is printed.

Transition time, curve and frame interval come from switchtrace.yaml in the
project root when present. A transition set in the scenario wins.

Flags:
  --realtime         Replay against the wall clock instead of virtual time
  --frames DIR       Write a PNG of every rendered frame to DIR
  --scale N          Zoom factor of the PNG frames (default: 2)`,
		Usage: "switchtrace run <scenario.yaml> [--realtime] [--frames DIR] [--scale N]",
		Run:   runRun,
	})
}

type runOptions struct {
	realtime  bool
	framesDir string
	scale     int
}

func runRun(args []string) error {
	positional, opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("a scenario file is required\n\nUsage: switchtrace run <scenario.yaml>")
	}

	sc, err := scenario.Load(positional[0])
	if err != nil {
		return err
	}

	root, err := config.FindProjectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return err
	}

	prefix := cfg.TraceName
	if sc.Name != "" {
		prefix = config.SanitizeName(sc.Name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player := trace.New(sc, trace.Options{
		Transition:    cfg.Transition,
		Curve:         cfg.Curve,
		FrameInterval: cfg.FrameInterval,
		Realtime:      opts.realtime,
		FramesDir:     opts.framesDir,
		FramePrefix:   prefix,
		FrameScale:    opts.scale,
		Out:           stdout,
	})
	if err := player.Play(ctx); err != nil {
		return err
	}
	if opts.framesDir != "" {
		fmt.Fprintf(stdout, "wrote %d frames to %s\n", player.Frames(), opts.framesDir)
	}
	return nil
}

func parseRunArgs(args []string) ([]string, runOptions, error) {
	opts := runOptions{scale: 2}
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--realtime":
			opts.realtime = true
		case arg == "--frames":
			if i+1 >= len(args) {
				return nil, opts, fmt.Errorf("--frames requires a directory")
			}
			i++
			opts.framesDir = args[i]
		case strings.HasPrefix(arg, "--frames="):
			opts.framesDir = strings.TrimPrefix(arg, "--frames=")
		case arg == "--scale":
			if i+1 >= len(args) {
				return nil, opts, fmt.Errorf("--scale requires a number")
			}
			i++
			n, err := parseScale(args[i])
			if err != nil {
				return nil, opts, err
			}
			opts.scale = n
		case strings.HasPrefix(arg, "--scale="):
			n, err := parseScale(strings.TrimPrefix(arg, "--scale="))
			if err != nil {
				return nil, opts, err
			}
			opts.scale = n
		case strings.HasPrefix(arg, "-"):
			return nil, opts, fmt.Errorf("unknown flag %q", arg)
		default:
			positional = append(positional, arg)
		}
	}
	return positional, opts, nil
}

func parseScale(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("--scale must be a positive integer (got %q)", s)
	}
	return n, nil
}
