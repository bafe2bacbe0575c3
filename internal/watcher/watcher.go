// Package watcher keeps an eye on the inbox and feeds new documents through
// the processor one at a time. Events are debounced per path so a file being
// copied in is picked up once, after the writes settle.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"archivist/internal/processor"
)

// Watcher owns one watched inbox directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	proc     *processor.Processor
}

func New(dir string, debounce time.Duration, proc *processor.Processor) *Watcher {
	return &Watcher{dir: dir, debounce: debounce, proc: proc}
}

// Run blocks, processing inbox arrivals until ctx is cancelled. Files already
// sitting in the inbox at startup are processed first.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := processor.EnsureInbox(w.dir); err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	log.Infof("watching %s (debounce %s)", w.dir, w.debounce)

	if existing, err := w.proc.ListPending(w.dir); err != nil {
		log.Warnf("initial inbox scan failed: %v", err)
	} else {
		for _, path := range existing {
			w.handle(ctx, path)
		}
	}

	// Debounce timers fire into jobs; the select below serializes the
	// actual processing. done unblocks any timer that fires after Run
	// returns, and the deferred Stop sweep covers the rest.
	pending := make(map[string]*time.Timer)
	jobs := make(chan string, 64)
	done := make(chan struct{})
	defer func() {
		close(done)
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !w.eligible(ev.Name) {
				continue
			}
			path := ev.Name
			if t, ok := pending[path]; ok {
				t.Stop()
			}
			pending[path] = time.AfterFunc(w.debounce, func() {
				select {
				case jobs <- path:
				case <-done:
				}
			})
		case path := <-jobs:
			delete(pending, path)
			w.handle(ctx, path)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch error: %v", err)
		}
	}
}

// eligible filters watch events down to supported, non-hidden documents.
func (w *Watcher) eligible(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.EqualFold(name, "README.md") {
		return false
	}
	return w.proc.Supported(filepath.Ext(name))
}

func (w *Watcher) handle(ctx context.Context, path string) {
	// The file may have been moved or deleted since the event fired.
	if _, err := os.Stat(path); err != nil {
		return
	}
	res, err := w.proc.ProcessOne(ctx, path)
	if err != nil {
		log.Errorf("failed to process %s: %v", path, err)
		return
	}
	log.Infof("filed %s -> %s", path, res.TargetPath)
}
