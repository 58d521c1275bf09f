package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce groups the bursts of events an editor save produces
const debounce = 100 * time.Millisecond

// watchFiles parses files once, then again after each write to one of
// them, until ctx is done. Parse failures are reported and watching goes on.
func watchFiles(ctx context.Context, files []string, s *settings, out, errOut io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the parent directories; editors often save by rename.
	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	pass := 0
	runOnce := func() {
		pass++
		// errors were already reported as diagnostics
		_ = compileFiles(ctx, files, s, out, errOut)
		fmt.Fprintf(errOut, "subcc: pass %d done, watching %d files\n", pass, len(files))
	}
	runOnce()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if targets[filepath.Clean(ev.Name)] && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(errOut, "subcc: watch error: %v\n", err)
		case <-pending:
			pending = nil
			runOnce()
		}
	}
}
