package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	_, err := New(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrPathNotExist)

	_, err = New(dir)
	assert.ErrorIs(t, err, ErrIsDirectory)

	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ops: []\n"), 0o644))
	w, err := New(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(w.Path()))
}

func waitRun(t *testing.T, runs <-chan string) string {
	t.Helper()
	select {
	case content := <-runs:
		return content
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a run")
		return ""
	}
}

func TestRunReruns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lua")
	other := filepath.Join(dir, "other.lua")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var handled []error
	w, err := New(path,
		WithDelay(20*time.Millisecond),
		WithErrorHandler(func(err error) { handled = append(handled, err) }),
	)
	require.NoError(t, err)

	runs := make(chan string, 10)
	fn := func(_ context.Context, p string) error {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		runs <- string(data)
		if string(data) == "bad" {
			return errors.New("bad content")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, fn) }()

	assert.Equal(t, "v1", waitRun(t, runs))

	// Changes to other files in the directory are ignored.
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("bad"), 0o644))
	assert.Equal(t, "bad", waitRun(t, runs))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	assert.Equal(t, "v2", waitRun(t, runs))

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.NotEmpty(t, handled)
	assert.EqualError(t, handled[0], "bad content")
}
