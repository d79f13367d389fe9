package source

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1973_NAMCS"), []byte("line\n"), 0o644))

	fs := NewFileSource(dir, zerolog.Nop())
	assert.True(t, fs.Exists(1973))
	assert.False(t, fs.Exists(1975))

	assert.Equal(t, filepath.Join(dir, "1973_NAMCS"), fs.Path(1973))

	rc, err := OpenFile(fs.Path(1973), zerolog.Nop())
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "line\n", string(data))

	_, err = OpenFile(fs.Path(1975), zerolog.Nop())
	assert.Error(t, err)
}

func TestYearFromFileName(t *testing.T) {
	year, err := YearFromFileName("/data/extracted_data/1999_NAMCS")
	require.NoError(t, err)
	assert.Equal(t, 1999, year)

	for _, name := range []string{"NAMCS99", "1999_NAMCS.csv", "abcd_NAMCS"} {
		_, err := YearFromFileName(name)
		assert.Error(t, err, name)
	}
}
