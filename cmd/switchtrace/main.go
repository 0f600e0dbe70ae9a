// Command switchtrace replays switcher scenarios and prints the resulting
// tree, phase transitions and, optionally, rendered PNG frames.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/switcher/cmd/switchtrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
