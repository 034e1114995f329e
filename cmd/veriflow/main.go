// Command veriflow is the offline verification toolkit.
package main

import (
	"fmt"
	"os"

	"github.com/veriflowhq/veriflow/internal/interfaces/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
