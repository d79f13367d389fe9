package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAbsolutePath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := GetAbsolutePath("data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "data"), got)

	got, err = GetAbsolutePath("/srv/ahcd/../data")
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", got)

	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err = GetAbsolutePath("~/.hdx_ahcd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".hdx_ahcd"), got)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "1973_NAMCS")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}
