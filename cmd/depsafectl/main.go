// Command depsafectl exercises the depsafe dependency-tracking engine
// outside of a test binary: it runs the canonical scenarios, replays
// scenario files against fresh engines, and watches a directory of
// scenario files for changes.
//
// Usage:
//
//	depsafectl demo
//	depsafectl stats [--prometheus]
//	depsafectl replay <file.yaml>
//	depsafectl replay --dir <dir>
//	depsafectl watch <dir>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "depsafectl",
	Short: "Exercise the depsafe dependency-tracking engine",
	Long:  "depsafectl runs and replays scenarios against the depsafe dependency graph engine.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print depsafectl's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("depsafectl version %s\n", version)
		return nil
	},
}
