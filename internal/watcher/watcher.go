// Package watcher monitors a source directory and converts files as
// they appear or change.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	cerrors "github.com/nuskha/nuskha/internal/errors"
)

// ConvertFunc converts a single source file.
type ConvertFunc func(ctx context.Context, path string) error

// Options controls watch behavior.
type Options struct {
	// Debounce is how long a file has to stay quiet before it is
	// converted. Editors and downloads touch a file several times.
	Debounce time.Duration

	// Extensions limits conversion to the given file extensions.
	// Empty means every file.
	Extensions []string
}

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Watch monitors dir until ctx is canceled, invoking fn for every
// created or written file. Conversions run sequentially on the watch
// goroutine; a failed conversion is logged and watching continues.
func Watch(ctx context.Context, dir string, fn ConvertFunc, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal,
			"creating file watcher")
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal,
			"watching directory "+dir)
	}

	slog.Info("watching for new files", "dir", dir, "debounce", opts.Debounce)

	jobs := make(chan string, 64)
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	enqueue := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[name]; ok {
			t.Stop()
		}
		timers[name] = time.AfterFunc(opts.Debounce, func() {
			mu.Lock()
			delete(timers, name)
			mu.Unlock()
			select {
			case jobs <- name:
			case <-ctx.Done():
			}
		})
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !wantFile(event.Name, opts.Extensions) {
				continue
			}
			slog.Debug("file change detected", "file", event.Name, "op", event.Op)
			enqueue(event.Name)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)

		case name := <-jobs:
			info, err := os.Stat(name)
			if err != nil || info.IsDir() {
				continue
			}
			slog.Info("converting", "file", name)
			if err := fn(ctx, name); err != nil {
				slog.Error("conversion failed", "file", name, "error", err)
			}
		}
	}
}

func wantFile(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
