package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/reoring/ncconf/importer"
)

// settle is how long a burst of editor writes must go quiet before the file
// is checked again.
const settle = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-validate a configuration whenever it changes",
	Long: `Validate FILE, then watch it and validate again after every save. Each
run is diffed against the previous valid version so only the edit shows up.
Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		o, err := importOpt()
		if err != nil {
			return err
		}
		return watchFile(cmd.Context(), cmd, args[0], o, strict)
	},
}

func init() {
	watchCmd.Flags().Bool("strict", false, "treat pin issues and advisories as failures")
}

func watchFile(ctx context.Context, cmd *cobra.Command, name string, o importer.Opt, strict bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file on save.
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := cmd.OutOrStdout()
	check := func() {
		r, err := importFile(cmd, name, o)
		if err != nil {
			logger.Printf("watch: %v", err)
			return
		}
		fmt.Fprintf(w, "%s %s\n", out.dim.Render(time.Now().Format(time.TimeOnly)), name)
		writeReport(w, name, r, strict, out)
		if r.Success {
			o.Baseline = r.Document
		}
	}
	check()
	logger.Printf("watching %s", abs)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			check()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watch error: %v", err)
		}
	}
}
