package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/SanteonNL/ahcd/cmd/ahcd/layout"
	"github.com/SanteonNL/ahcd/models/namcs"
)

// Stream lazily yields the canonical records of one source file. Every input
// line yields exactly one record, including lines that failed to decode.
//
//	stream, err := p.Process(1973, file)
//	for stream.Next() {
//		rec := stream.Record()
//	}
//	err = stream.Err()
type Stream struct {
	p            *Processor
	sourceFileID string
	layout       layout.Layout

	reader *bufio.Reader
	closer io.Closer
	closed bool
	eof    bool
	done   bool

	row    int
	record namcs.Record
	errs   []namcs.ErrorEntry
	err    error
}

func newStream(p *Processor, sourceFileID string, l layout.Layout, r io.ReadCloser) *Stream {
	return &Stream{
		p:            p,
		sourceFileID: sourceFileID,
		layout:       l,
		reader:       bufio.NewReader(r),
		closer:       r,
	}
}

// Next advances to the next record. It returns false once the input is
// exhausted or could not be read; the error entries are then written to the
// error sink.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	if s.eof {
		s.finish(true)
		return false
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = fmt.Errorf("failed to read %s at row %d: %w", s.sourceFileID, s.row+1, err)
			s.finish(false)
			return false
		}
		s.eof = true
	}
	if line == "" {
		s.finish(true)
		return false
	}

	s.row++
	s.record = s.decode(strings.TrimRight(line, "\r\n"))
	return true
}

func (s *Stream) decode(line string) namcs.Record {
	rec := namcs.NewRecord(s.sourceFileID, s.row)
	if err := s.p.normalize(line, s.layout, rec); err != nil {
		s.errs = append(s.errs, namcs.ErrorEntry{
			RecordNumber: s.row,
			Record:       line,
			Exception:    err.Error(),
		})
		s.p.log.Warn().Err(err).Str("sourceFile", s.sourceFileID).Int("row", s.row).Msg("Failed to normalize record")
	}
	s.p.resolver.Project(rec)

	if s.p.opts.DropBlankDiagnoses {
		if diags, ok := rec.Strings(namcs.FieldPhysicianDiagnoses); ok {
			rec[namcs.FieldPhysicianDiagnoses] = slices.DeleteFunc(diags, func(d string) bool { return d == "" })
		}
	}
	return rec
}

// finish closes the source and, after a complete read, flushes the error
// entries.
func (s *Stream) finish(drained bool) {
	s.done = true
	s.record = nil
	if err := s.Close(); err != nil && s.err == nil {
		s.err = err
	}
	if !drained {
		return
	}

	s.p.log.Info().
		Str("sourceFile", s.sourceFileID).
		Int("rows", s.row).
		Int("failed", len(s.errs)).
		Msg("Finished source file")

	if len(s.errs) == 0 || s.p.sink == nil {
		return
	}
	if err := s.p.sink.WriteErrors(s.sourceFileID, s.errs); err != nil {
		s.err = fmt.Errorf("failed to write errors of %s: %w", s.sourceFileID, err)
	}
}

// Record returns the record read by the last call to Next.
func (s *Stream) Record() namcs.Record {
	return s.record
}

// Errors returns the error entries collected so far.
func (s *Stream) Errors() []namcs.ErrorEntry {
	return s.errs
}

// Rows returns the number of records yielded so far.
func (s *Stream) Rows() int {
	return s.row
}

// SourceFileID returns the identifier of the streamed file.
func (s *Stream) SourceFileID() string {
	return s.sourceFileID
}

// Err returns the first read, close or error sink failure.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the source file. Closing a stream before it is drained
// discards the collected error entries. It is safe to call Close more than
// once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.sourceFileID, err)
	}
	return nil
}
