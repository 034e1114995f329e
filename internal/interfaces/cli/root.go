// Package cli implements the veriflow command line tool. It runs the
// verification engines locally against the built-in provider fixtures, for
// rule inspection and support triage without a running server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	output string // "json" or "text"
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "veriflow",
		Short:         "Customer verification analysis toolkit",
		Long:          "veriflow cross-validates identity records, traces beneficial ownership, and scores onboarding risk.",
		Version:       fmt.Sprintf("%s (commit %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.output != "json" && opts.output != "text" {
				return fmt.Errorf("unknown output format %q, want json or text", opts.output)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: json or text")

	cmd.AddCommand(newVerifyCommand(opts))
	cmd.AddCommand(newRiskCommand(opts))
	return cmd
}

// printJSON writes v as indented JSON to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
