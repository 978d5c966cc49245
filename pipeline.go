package maupack

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/worship-game/maupack/archive"
	"github.com/worship-game/maupack/asseterr"
)

func replaceExt(file, ext string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + ext
}

func findFiles(ctx context.Context, base, ext string) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.WalkDir(base, func(file string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if file != base && d.Name()[0] == '.' {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !d.Type().IsRegular() || filepath.Ext(file) != ext {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})
	}()
	return out, errc
}

func (c *Compiler) fileWorker(ctx context.Context, in <-chan string, fn func(string) error) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if ctx.Err() != nil {
				return
			}
			if err := fn(file); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc
}

// Wait for every stage to finish, cancelling the rest on the first error
func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Errors from the transforms already say where they happened, anything
// else came from walking base
func walkError(stage, base string, err error) error {
	if asseterr.KindOf(err) != nil {
		return err
	}
	return asseterr.Wrap(asseterr.ErrIO, stage, base, err)
}

// Run fn over every file under base with the given extension
func (c *Compiler) forEachFile(parent context.Context, base, ext string, workers int, fn func(string) error) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var errcList []<-chan error

	files, errc := findFiles(ctx, base, ext)
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errcList = append(errcList, c.fileWorker(ctx, files, fn))
	}

	if err := waitForPipeline(cancel, errcList...); err != nil {
		return err
	}

	// Workers drop files once cancelled
	return parent.Err()
}

// Build runs a full asset build: textures, then levels, then the archive.
// Nothing is reused from earlier builds.
func (c *Compiler) Build(ctx context.Context, cfg *Config) ([]archive.Entry, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if !cfg.SkipTextures {
		if err := c.forEachFile(ctx, cfg.Data, ".png", workers, func(file string) error {
			return c.Texture(file, replaceExt(file, ".tex"), cfg.TextureColors)
		}); err != nil {
			return nil, walkError("texture", cfg.Data, err)
		}
	}

	// Levels are flattened into the root of the data directory
	var mu sync.Mutex
	claimed := make(map[string]string)
	if err := c.forEachFile(ctx, cfg.Levels, ".json", workers, func(file string) error {
		dst := filepath.Join(cfg.Data, replaceExt(filepath.Base(file), ".lvl"))

		mu.Lock()
		prev, dup := claimed[dst]
		claimed[dst] = file
		mu.Unlock()
		if dup {
			return asseterr.Wrap(asseterr.ErrInputFormat, "level", file, fmt.Errorf("%s is also compiled from %s", dst, prev))
		}

		return c.Level(file, dst)
	}); err != nil {
		return nil, walkError("level", cfg.Levels, err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
		return nil, asseterr.Wrap(asseterr.ErrIO, "pack", cfg.Output, err)
	}

	return c.Pack(cfg.Data, cfg.Output)
}
