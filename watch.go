package maupack

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/worship-game/maupack/archive"
)

const watchDebounce = 250 * time.Millisecond

// Changes to these files start a new build. Generated textures and levels
// are excluded so a build does not trigger itself.
func isSourceFile(file string) bool {
	base := filepath.Base(file)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch filepath.Ext(base) {
	case ".png", ".json":
		return true
	case ".tex", ".lvl":
		return false
	}
	_, err := archive.TypeOf(base)
	return err == nil
}

func watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(dir string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if dir != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(dir)
	})
}

// Watch builds cfg, then rebuilds it from scratch whenever a source file
// under the data or levels directories changes. Build failures are logged
// and watching continues. Watch returns when ctx is cancelled.
func (c *Compiler) Watch(ctx context.Context, cfg *Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range []string{cfg.Data, cfg.Levels} {
		if err := watchTree(w, dir); err != nil {
			return err
		}
	}

	build := func() {
		if _, err := c.Build(ctx, cfg); err != nil {
			if ctx.Err() == nil {
				c.logger.Printf("build failed: %v\n", err)
			}
			return
		}
		c.logger.Printf("build finished, wrote %s\n", cfg.Output)
	}
	build()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New directories need watching too
			if event.Op&fsnotify.Create != 0 && !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := watchTree(w, event.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
					c.logger.Printf("watch: %v\n", err)
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isSourceFile(event.Name) {
				continue
			}
			timer.Reset(watchDebounce)
		case <-timer.C:
			build()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Printf("watch: %v\n", err)
		}
	}
}
