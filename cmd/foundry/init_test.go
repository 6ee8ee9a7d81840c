package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunInitScaffoldsStaticTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	opts := initOptions{dir: dir, projectName: "acme_pipelines", flowArch: "medallion"}

	require.NoError(t, runInit(nil, opts))

	manifest, err := os.ReadFile(filepath.Join(dir, "foundry.yml"))
	require.NoError(t, err)
	require.Contains(t, string(manifest), "name: acme_pipelines")
	require.Contains(t, string(manifest), "modelling_architecture: medallion")

	for _, d := range []string{"models", "sources", "python"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestRunInitNeverClobbersExistingProjectFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foundry.yml"), []byte("name: untouched\n"), 0o644))

	require.NoError(t, runInit(nil, initOptions{dir: dir, projectName: "ignored", flowArch: "medallion"}))

	content, err := os.ReadFile(filepath.Join(dir, "foundry.yml"))
	require.NoError(t, err)
	require.Equal(t, "name: untouched\n", string(content))
}

func TestNewInitCmdRegistersFromTemplateFlag(t *testing.T) {
	t.Parallel()

	cmd := newInitCmd()
	flag := cmd.Flags().Lookup("from-template")
	require.NotNil(t, flag)
	require.Equal(t, "", flag.DefValue)
}
