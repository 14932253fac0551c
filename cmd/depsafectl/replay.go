package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var replayDir string

func init() {
	replayCmd.Flags().StringVar(&replayDir, "dir", "", "replay every scenario file in a directory concurrently instead of a single file")
	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   "replay [file.yaml]",
	Short: "Replay a scenario file against a fresh engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayDir != "" {
			return replayDirectory(replayDir)
		}
		if len(args) != 1 {
			return fmt.Errorf("replay requires exactly one scenario file, or --dir")
		}
		return replayFile(args[0])
	},
}

func replayFile(path string) error {
	sc, err := LoadScenario(path)
	if err != nil {
		return err
	}
	outcomes, violations, err := RunScenario(sc)
	if err != nil {
		return err
	}
	printReplayResult(sc.Name, outcomes, violations)
	return nil
}

// replayDirectory fans a directory of independent scenario files out across
// an errgroup, one fresh Engine per file. Registries are not safe to share
// across goroutines, so concurrency here comes from giving every file its
// own, rather than from sharing one and serializing access to it.
func replayDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read scenario dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".yaml" && filepath.Ext(name) != ".yml" {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)

	results := make([]struct {
		name       string
		outcomes   []Outcome
		violations []Violation
	}, len(paths))

	g := new(errgroup.Group)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			sc, err := LoadScenario(path)
			if err != nil {
				return err
			}
			outcomes, violations, err := RunScenario(sc)
			if err != nil {
				return err
			}
			results[i].name = sc.Name
			results[i].outcomes = outcomes
			results[i].violations = violations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		printReplayResult(r.name, r.outcomes, r.violations)
	}
	return nil
}

func printReplayResult(name string, outcomes []Outcome, violations []Violation) {
	fmt.Printf("=== %s ===\n", name)
	for _, o := range outcomes {
		state := "valid"
		if !o.Valid {
			state = "INVALID"
		}
		fmt.Printf("  %-16s %-36s %s\n", o.Label, o.ID, state)
	}
	for _, v := range violations {
		fmt.Printf("  violation: %s (%s)\n", v.Label, v.ID)
	}
}
