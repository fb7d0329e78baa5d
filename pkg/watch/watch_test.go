package watch_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/mocks"
	"github.com/poltergeist/buildscript/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type change struct {
	cfg *buildconfig.Config
	err error
}

func startWatcher(t *testing.T, path string) (*watch.Watcher, <-chan change) {
	t.Helper()
	changes := make(chan change, 16)
	w := watch.New(path, mocks.NewMockLogger(), func(cfg *buildconfig.Config, err error) {
		changes <- change{cfg, err}
	})
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w, changes
}

func next(t *testing.T, changes <-chan change) change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
		return change{}
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".build.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: php\n"), 0644))

	_, changes := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("language: objective-c\n"), 0644))
	c := next(t, changes)
	require.NoError(t, c.err)
	assert.Equal(t, "objective-c", c.cfg.Language())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".build.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: php\n"), 0644))

	_, changes := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0644))
	select {
	case c := <-changes:
		t.Fatalf("unexpected reload: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ReportsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".build.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: php\n"), 0644))

	_, changes := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("language: [unterminated\n"), 0644))
	c := next(t, changes)
	assert.Error(t, c.err)
	assert.Nil(t, c.cfg)
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".build.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: php\n"), 0644))

	_, changes := startWatcher(t, path)

	require.NoError(t, os.Remove(path))
	c := next(t, changes)
	assert.True(t, errors.Is(c.err, watch.ErrRemoved))
}

func TestWatcher_TriggerForcesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".build.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: php\n"), 0644))

	w, changes := startWatcher(t, path)

	w.Trigger()
	c := next(t, changes)
	require.NoError(t, c.err)
	assert.Equal(t, "php", c.cfg.Language())
}

func TestWatcher_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".build.yml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	w := watch.New(path, nil, func(*buildconfig.Config, error) {})
	assert.False(t, w.IsWatching())

	require.NoError(t, w.Start())
	assert.True(t, w.IsWatching())
	assert.Error(t, w.Start())

	require.NoError(t, w.Stop())
	assert.False(t, w.IsWatching())
	assert.NoError(t, w.Stop())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := watch.New(filepath.Join(t.TempDir(), "missing", ".build.yml"), nil, func(*buildconfig.Config, error) {})
	assert.Error(t, w.Start())
	assert.False(t, w.IsWatching())
}
