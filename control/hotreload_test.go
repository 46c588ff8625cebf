// control/hotreload_test.go
// Author: momentics <momentics@gmail.com>

package control_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-sock/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadHooksSync(t *testing.T) {
	var calls atomic.Int32
	control.RegisterReloadHook(func() { calls.Add(1) })
	control.TriggerHotReloadSync()
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sock.toml")
	require.NoError(t, os.WriteFile(path, []byte("[reactor]\nmax_events = 8\n"), 0o600))

	store := control.NewConfigStore(control.DefaultConfig())
	require.NoError(t, control.Reload(path, store))
	require.Equal(t, 8, store.GetSnapshot().Reactor.MaxEvents)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- control.Watch(ctx, path, store) }()

	// the watcher registers asynchronously; keep rewriting until observed
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("[reactor]\nmax_events = 16\n"), 0o600)
		return store.GetSnapshot().Reactor.MaxEvents == 16
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
