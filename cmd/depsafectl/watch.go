package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-run replay --dir every time a scenario file under dir changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("watch requires exactly one directory argument")
		}
		return watchDir(args[0])
	},
}

// watchDir follows the batched fsnotify loop shape: rapid-fire events
// (editors often emit a write and a rename for one save) only mark the
// directory dirty, and the whole directory is replayed at most once per
// 200ms tick in which something changed, instead of once per individual
// file event.
func watchDir(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	fmt.Printf("watching %s for scenario changes (ctrl-c to stop)\n", dir)
	if err := replayDirectory(dir); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
	}

	const debounce = 200 * time.Millisecond
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				dirty = true
			}

		case <-ticker.C:
			if !dirty {
				continue
			}
			dirty = false
			if err := replayDirectory(dir); err != nil {
				fmt.Fprintf(os.Stderr, "replay: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
