package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/SanteonNL/ahcd/models/namcs"
)

// RecordSource yields canonical records one at a time, as pipeline.Stream
// does.
type RecordSource interface {
	Next() bool
	Record() namcs.Record
	Err() error
}

// SourceFileSummary is one row of the SOURCE_FILES_INFO file.
type SourceFileSummary struct {
	Year          int
	URL           string
	ArchiveName   string
	ConvertedFile string
	ErrorFile     string
	Rows          int
	FailedRows    int
}

var sourceFilesInfoHeader = []string{
	"year", "url", "archive_name", "converted_file", "error_file", "rows", "failed_rows",
}

// WriteErrors writes the error file of a source file. It implements
// pipeline.ErrorSink.
func (om *OutputManager) WriteErrors(sourceFileID string, entries []namcs.ErrorEntry) error {
	path := om.GetErrorPath(sourceFileID + ".err")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create error file: %w", err)
	}
	defer file.Close()

	if err := WriteErrorEntries(file, entries); err != nil {
		return err
	}

	om.log.Info().
		Str("file", path).
		Int("entries", len(entries)).
		Msg("Wrote error file")
	return file.Close()
}

// RemoveStaleErrors deletes the error file left by a previous run.
func (om *OutputManager) RemoveStaleErrors(sourceFileID string) error {
	err := os.Remove(om.GetErrorPath(sourceFileID + ".err"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale error file: %w", err)
	}
	return nil
}

// WriteConverted drains records into the converted CSV file name and returns
// the number of rows written.
func (om *OutputManager) WriteConverted(name string, records RecordSource) (int, error) {
	path := om.GetOutputPath(name)
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create converted file: %w", err)
	}
	defer file.Close()

	rows, err := WriteRecords(file, records)
	if err != nil {
		return rows, err
	}

	om.log.Info().
		Str("file", path).
		Int("rows", rows).
		Msg("Wrote converted file")
	return rows, file.Close()
}

// WriteSourceFilesInfo writes the summary of a conversion run.
func (om *OutputManager) WriteSourceFilesInfo(name string, summaries []SourceFileSummary) error {
	file, err := os.Create(om.GetOutputPath(name))
	if err != nil {
		return fmt.Errorf("failed to create source files info: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(sourceFilesInfoHeader); err != nil {
		return fmt.Errorf("failed to write source files info: %w", err)
	}
	for _, s := range summaries {
		row := []string{
			strconv.Itoa(s.Year),
			s.URL,
			s.ArchiveName,
			s.ConvertedFile,
			s.ErrorFile,
			strconv.Itoa(s.Rows),
			strconv.Itoa(s.FailedRows),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write source files info: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write source files info: %w", err)
	}
	return file.Close()
}

// WriteErrorEntries writes entries as CSV with a record_no,exception,record
// header.
func WriteErrorEntries(out io.Writer, entries []namcs.ErrorEntry) error {
	w := csv.NewWriter(out)
	if err := w.Write(namcs.ErrorFields); err != nil {
		return fmt.Errorf("failed to write error header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write([]string{strconv.Itoa(e.RecordNumber), e.Exception, e.Record}); err != nil {
			return fmt.Errorf("failed to write error entry %d: %w", e.RecordNumber, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteRecords writes records as CSV with the canonical header.
func WriteRecords(out io.Writer, records RecordSource) (int, error) {
	w := csv.NewWriter(out)
	if err := w.Write(namcs.ConvertedFields); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	rows := 0
	row := make([]string, len(namcs.ConvertedFields))
	for records.Next() {
		rec := records.Record()
		for i, field := range namcs.ConvertedFields {
			cell, err := FormatValue(rec[field])
			if err != nil {
				return rows, fmt.Errorf("failed to format %s of row %d: %w", field, rec.Row(), err)
			}
			row[i] = cell
		}
		if err := w.Write(row); err != nil {
			return rows, fmt.Errorf("failed to write row %d: %w", rec.Row(), err)
		}
		rows++
	}
	if err := records.Err(); err != nil {
		return rows, err
	}

	w.Flush()
	return rows, w.Error()
}

// FormatValue renders a record value as a CSV cell. Lists are encoded as JSON
// arrays and absent values as empty cells.
func FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case []string:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return fmt.Sprint(v), nil
}
