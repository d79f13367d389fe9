package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/catalog"
	"github.com/SanteonNL/ahcd/models/namcs"
	"github.com/SanteonNL/ahcd/util"
)

// FileSource opens the extracted NAMCS data files of a directory.
type FileSource struct {
	dir string
	log zerolog.Logger
}

// NewFileSource creates a new FileSource reading from dir
func NewFileSource(dir string, log zerolog.Logger) *FileSource {
	return &FileSource{dir: dir, log: log}
}

// Path returns the location of the data file of year.
func (fs *FileSource) Path(year int) string {
	return filepath.Join(fs.dir, catalog.DatasetFileName(year))
}

// Exists reports whether the data file of year is present.
func (fs *FileSource) Exists(year int) bool {
	path := fs.Path(year)
	if !util.FileExists(path) {
		fs.log.Debug().Str("file", path).Msg("Data file not found")
		return false
	}
	return true
}

// OpenFile opens a data file given by path.
func OpenFile(path string, log zerolog.Logger) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	log.Debug().Str("file", path).Msg("Opened data file")
	return file, nil
}

// YearFromFileName extracts the year of a "<YEAR>_NAMCS" file path.
func YearFromFileName(path string) (int, error) {
	name := filepath.Base(path)
	year, err := namcs.YearFromSourceFileID(name)
	if err != nil {
		return 0, err
	}
	if name != namcs.SourceFileID(year) {
		return 0, fmt.Errorf("file name %s is not in the format <YEAR>_NAMCS", name)
	}
	return year, nil
}
