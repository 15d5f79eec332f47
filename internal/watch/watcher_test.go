package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls, last atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(n)
		})
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
	d.Stop()
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestNewRequiresFiles(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestWatchReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shapeshift.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unions: []\n"), 0o644))
	other := filepath.Join(dir, "other.txt")

	w, err := New(Config{Files: []string{path}, Debounce: 10 * time.Millisecond}, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(p string) error {
			changed <- p
			return nil
		})
	}()

	// Give the event loop a moment to start.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("unions: []\n# edited\n"), 0o644))

	select {
	case p := <-changed:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Error(t, w.Watch(context.Background(), nil), "a watcher runs once")
}
