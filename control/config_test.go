// control/config_test.go
// Author: momentics <momentics@gmail.com>

package control_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/momentics/hioload-sock/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[reactor]
max_events = 64
close_on_exec = false
poll_timeout = "250ms"

[resolver]
timeout = "2s"
flags = ["canonname", "v4mapped"]

[log]
level = "debug"
encoding = "json"
`

func TestParseConfig(t *testing.T) {
	cfg, err := control.ParseConfig(sampleConfig)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Reactor.MaxEvents)
	assert.False(t, cfg.Reactor.CloseOnExec)
	assert.Equal(t, control.Duration(250*time.Millisecond), cfg.Reactor.PollTimeout)
	assert.Equal(t, control.Duration(2*time.Second), cfg.Resolver.Timeout)
	assert.Equal(t, []string{"canonname", "v4mapped"}, cfg.Resolver.Flags)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := control.ParseConfig("[log]\nlevel = \"warn\"\n")
	require.NoError(t, err)
	def := control.DefaultConfig()
	assert.Equal(t, def.Reactor, cfg.Reactor)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestParseConfigRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "[reactor]\nmax_event = 1\n",
		"bad duration": "[resolver]\ntimeout = \"soon\"\n",
		"zero events":  "[reactor]\nmax_events = 0\n",
		"bad encoding": "[log]\nencoding = \"xml\"\n",
		"syntax":       "[reactor\n",
	}
	for name, doc := range cases {
		_, err := control.ParseConfig(doc)
		assert.Error(t, err, name)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sock.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	cfg, err := control.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Reactor.MaxEvents)

	_, err = control.LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfigStoreListeners(t *testing.T) {
	store := control.NewConfigStore(control.DefaultConfig())
	var seen []int
	store.OnReload(func(c control.Config) { seen = append(seen, c.Reactor.MaxEvents) })

	next := control.DefaultConfig()
	next.Reactor.MaxEvents = 7
	require.NoError(t, store.SetConfig(next))
	assert.Equal(t, []int{7}, seen)
	assert.Equal(t, 7, store.GetSnapshot().Reactor.MaxEvents)

	next.Reactor.MaxEvents = -1
	assert.Error(t, store.SetConfig(next))
	assert.Equal(t, 7, store.GetSnapshot().Reactor.MaxEvents)
	assert.Len(t, seen, 1)
}

func TestSnapshotIsCopy(t *testing.T) {
	store := control.NewConfigStore(control.DefaultConfig())
	snap := store.GetSnapshot()
	snap.Resolver.Flags[0] = "mutated"
	assert.NotEqual(t, "mutated", store.GetSnapshot().Resolver.Flags[0])
}
