package python

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultsInterpreterToPython3(t *testing.T) {
	t.Parallel()

	r := New("")
	require.Equal(t, "python3", r.Interpreter)

	r = New("/usr/bin/python3.11")
	require.Equal(t, "/usr/bin/python3.11", r.Interpreter)
}

func TestRunSucceedsAndMergesCustomEnv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "job.sh")
	require.NoError(t, os.WriteFile(script, []byte(`#!/bin/sh
test "$JOB_TOKEN" = "abc123"
`), 0o755))

	r := New("/bin/sh")
	err := r.Run(context.Background(), "sync_hubspot", script, map[string]string{"JOB_TOKEN": "abc123"})
	require.NoError(t, err)
}

func TestRunSurfacesCombinedOutputOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "job.sh")
	require.NoError(t, os.WriteFile(script, []byte(`#!/bin/sh
echo "boom" >&2
exit 1
`), 0o755))

	r := New("/bin/sh")
	err := r.Run(context.Background(), "sync_hubspot", script, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestRunFailsWhenInterpreterNotFound(t *testing.T) {
	t.Parallel()

	r := New("/no/such/interpreter-binary")
	err := r.Run(context.Background(), "sync_hubspot", "script.py", nil)
	require.Error(t, err)
}
