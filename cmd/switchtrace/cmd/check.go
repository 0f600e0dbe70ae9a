package cmd

import (
	"fmt"

	"github.com/go-drift/switcher/cmd/switchtrace/internal/scenario"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate scenario files",
		Long: `Parse and validate one or more scenario files without replaying them.

Every file is checked; the command fails if any of them is invalid.`,
		Usage: "switchtrace check <scenario.yaml>...",
		Run:   runCheck,
	})
}

func runCheck(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one scenario file is required\n\nUsage: switchtrace check <scenario.yaml>...")
	}

	failed := 0
	for _, path := range args {
		sc, err := scenario.Load(path)
		if err != nil {
			fmt.Fprintf(stdout, "FAIL %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(stdout, "ok   %s: %d boxes, %d steps\n", path, len(sc.Boxes), len(sc.Steps))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios invalid", failed, len(args))
	}
	return nil
}
