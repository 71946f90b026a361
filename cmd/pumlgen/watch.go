package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/pumlgen/compiler/gen"
)

// debounce collapses the burst of events an editor save produces.
const debounce = 200 * time.Millisecond

func (c *cli) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <input.puml>",
		Short: "Regenerate whenever a diagram changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.bindGenFlags(cmd); err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			return c.watch(cmd.Context(), args[0], cfg)
		},
	}
	addGenFlags(cmd)
	return cmd
}

// watch generates once, then again after every change of path until ctx
// is done. Generation errors are logged and do not stop watching.
func (c *cli) watch(ctx context.Context, path string, cfg *gen.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Editors often replace the file, so the directory is watched.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	run := func() {
		if err := c.generate(ctx, path, cfg); err != nil {
			c.log.Error("generation failed", "input", path, "error", err)
		}
	}
	run()
	c.log.Info("watching", "input", path)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("watch error", "error", err)
		case <-timer.C:
			c.log.Debug("diagram changed", "input", path)
			run()
		}
	}
}
