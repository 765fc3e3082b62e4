package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_NotifiesOncePerBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "doc.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(target, []byte("a: 1\n"), 0644))

	changes := make(chan string, 10)
	w, err := NewWatcher(50*time.Millisecond, func(path string) { changes <- path })
	require.NoError(t, err)
	require.NoError(t, w.Add(target))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("a: 2\n"), 0644))
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, os.WriteFile(other, []byte("ignored\n"), 0644))

	select {
	case got := <-changes:
		abs, _ := filepath.Abs(target)
		assert.Equal(t, abs, got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	select {
	case extra := <-changes:
		t.Fatalf("unexpected second notification for %s", extra)
	case <-time.After(200 * time.Millisecond):
	}

	stats := w.Stats()
	assert.Equal(t, 1, stats.Notifications)
	assert.GreaterOrEqual(t, stats.Events, 1)
}

func TestWatcher_StopDropsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(target, []byte("a: 1\n"), 0644))

	w, err := NewWatcher(time.Hour, func(string) { t.Error("callback after stop") })
	require.NoError(t, err)
	require.NoError(t, w.Add(target))
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(target, []byte("a: 2\n"), 0644))
	time.Sleep(100 * time.Millisecond)
	w.Stop()
	w.Stop() // idempotent

	assert.Error(t, w.Start(context.Background()))
}

func TestWatcher_StopLeavesNothingPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(target, []byte("a: 1\n"), 0644))

	w, err := NewWatcher(time.Hour, func(string) {})
	require.NoError(t, err)
	require.NoError(t, w.Add(target))
	abs, _ := filepath.Abs(target)

	quit := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-quit:
				return
			default:
				w.handleEvent(fsnotify.Event{Name: abs, Op: fsnotify.Write})
			}
		}
	}()

	time.Sleep(10 * time.Millisecond)
	w.Stop()
	close(quit)
	wg.Wait()

	w.mu.Lock()
	d := w.files[abs]
	w.mu.Unlock()
	assert.False(t, d.Pending(), "no debounce timer may outlive Stop")
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(10*time.Millisecond, func(string) {})
	require.NoError(t, err)
	w.Stop()
}
