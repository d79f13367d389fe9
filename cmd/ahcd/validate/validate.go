package validate

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SanteonNL/ahcd/cmd/ahcd/catalog"
	"github.com/SanteonNL/ahcd/cmd/ahcd/source"
	"github.com/SanteonNL/ahcd/models/namcs"
	"github.com/SanteonNL/ahcd/util"
)

// sampleSize is the number of leading records checked for their length.
const sampleSize = 5

// Result collects validation failures.
type Result struct {
	Errors []string
}

// Valid reports whether no failures were collected.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Merge returns r with the failures of others appended.
func (r Result) Merge(others ...Result) Result {
	for _, o := range others {
		r.Errors = append(r.Errors, o.Errors...)
	}
	return r
}

// Err returns the failures as one error, or nil.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return errors.New(strings.Join(r.Errors, "; "))
}

func (r *Result) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Arguments validates the years and optional data file given on the command
// line. A data file can only be combined with a single year.
func Arguments(years []int, fileName string) Result {
	var r Result
	if len(years) > 1 && fileName != "" {
		r.addf("with multiple NAMCS years %v, a file name is not supported", years)
		return r
	}

	r = r.Merge(Years(years))
	if fileName != "" {
		r = r.Merge(fileExists(fileName), fileNameFormat(fileName), yearFromFileName(fileName))
	}
	return r
}

// Years validates that every year has a published data file.
func Years(years []int) Result {
	var r Result
	for _, y := range years {
		if !catalog.IsAvailable(y) {
			r.addf("year %d is not a valid year, valid years are: %v", y, catalog.YearsAvailable)
		}
	}
	return r
}

// DatasetRecords checks the length of the first records of a data file
// against the expected record length of year.
func DatasetRecords(year int, fileName string) Result {
	r := fileExists(fileName)
	if !r.Valid() {
		return r
	}

	want, err := catalog.RecordLength(year)
	if err != nil {
		r.addf("no record length known for year %d", year)
		return r
	}

	file, err := os.Open(fileName)
	if err != nil {
		r.addf("failed to open NAMCS dataset file %s: %v", fileName, err)
		return r
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for n := 1; n <= sampleSize && scanner.Scan(); n++ {
		got := len(strings.TrimRight(scanner.Text(), "\r"))
		if got != want {
			r.addf("NAMCS dataset file %s has record length %d at row %d whereas %d is expected", fileName, got, n, want)
			return r
		}
	}
	if err := scanner.Err(); err != nil {
		r.addf("failed to read NAMCS dataset file %s: %v", fileName, err)
	}
	return r
}

func fileExists(fileName string) Result {
	var r Result
	if !util.FileExists(fileName) {
		r.addf("NAMCS dataset file %s doesn't exist", fileName)
	}
	return r
}

func fileNameFormat(fileName string) Result {
	var r Result
	base := filepath.Base(fileName)
	for _, y := range catalog.YearsAvailable {
		if base == namcs.SourceFileID(y) {
			return r
		}
	}
	r.addf("NAMCS dataset file name %s failed validation, expected file name in format <YEAR>_NAMCS", fileName)
	return r
}

func yearFromFileName(fileName string) Result {
	var r Result
	year, err := source.YearFromFileName(fileName)
	if err != nil || !catalog.IsAvailable(year) {
		r.addf("unable to extract year from file name %s, please specify file name in format <YEAR>_NAMCS", fileName)
	}
	return r
}
