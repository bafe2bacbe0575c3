package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archivist/internal/config"
	"archivist/internal/oracle"
	"archivist/internal/processor"
	"archivist/internal/reader"
	"archivist/internal/rules"
)

func newTestProcessor(t *testing.T, root string) *processor.Processor {
	t.Helper()
	cfg := &config.Config{}
	cfg.KnowledgeBase.RootPath = root
	cfg.FileProcessing.SupportedExtensions = []string{".txt", ".md"}
	cfg.FileProcessing.MaxFilenameLength = 200
	cfg.FileProcessing.VersionFormat = "simple"
	cfg.FileProcessing.DateFormat = "20060102"
	cfg.DateExtraction.Priority = []string{"content", "modification", "current"}
	cfg.Defaults.InitialVersion = "v1.0"
	cfg.Defaults.FallbackSubject = "untitled"

	orc, err := oracle.NewFromConfig(cfg)
	require.NoError(t, err)
	return processor.New(cfg, rules.Defaults(), reader.DefaultRegistry(), orc)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func startWatcher(t *testing.T, inbox string, debounce time.Duration) (context.CancelFunc, chan error) {
	t.Helper()
	proc := newTestProcessor(t, t.TempDir())
	w := New(inbox, debounce, proc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// EnsureInbox writes the README before the event loop starts.
	require.True(t, waitFor(t, 2*time.Second, func() bool {
		_, err := os.Stat(filepath.Join(inbox, "README.md"))
		return err == nil
	}), "watcher did not initialize the inbox")
	return cancel, errCh
}

func TestRunProcessesArrival(t *testing.T) {
	inbox := t.TempDir()
	cancel, errCh := startWatcher(t, inbox, 20*time.Millisecond)
	defer cancel()

	doc := filepath.Join(inbox, "会议纪要整理.txt")
	require.NoError(t, os.WriteFile(doc, []byte("会议纪要整理"), 0o644))

	assert.True(t, waitFor(t, 5*time.Second, func() bool {
		_, err := os.Stat(doc)
		return os.IsNotExist(err)
	}), "document was not filed out of the inbox")

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestRunStopsWithDebounceInFlight(t *testing.T) {
	inbox := t.TempDir()
	// A debounce far longer than the test keeps the timer armed at cancel.
	cancel, errCh := startWatcher(t, inbox, time.Hour)

	doc := filepath.Join(inbox, "报告.txt")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop with a debounce timer pending")
	}
}
