package pipeline

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/decoder"
	"github.com/SanteonNL/ahcd/cmd/ahcd/layout"
	"github.com/SanteonNL/ahcd/models/namcs"
)

// ErrorSink receives the error entries of one source file once the file has
// been fully read.
type ErrorSink interface {
	WriteErrors(sourceFileID string, entries []namcs.ErrorEntry) error
}

// Options tune the records produced by a Processor.
type Options struct {
	// DropBlankDiagnoses removes empty diagnosis slots from the output.
	DropBlankDiagnoses bool
}

// Processor turns NAMCS source files into streams of canonical records.
type Processor struct {
	layouts  *layout.Registry
	decoder  *decoder.DecoderService
	resolver *decoder.ResolverService
	sink     ErrorSink
	opts     Options
	log      zerolog.Logger
}

// NewProcessor creates a new Processor. sink may be nil, in which case error
// entries are only available through Stream.Errors.
func NewProcessor(
	layouts *layout.Registry,
	dec *decoder.DecoderService,
	res *decoder.ResolverService,
	sink ErrorSink,
	opts Options,
	log zerolog.Logger,
) *Processor {
	return &Processor{
		layouts:  layouts,
		decoder:  dec,
		resolver: res,
		sink:     sink,
		opts:     opts,
		log:      log,
	}
}

// Process starts streaming the records of the source file of year. The reader
// is owned by the returned stream and closed when the stream is drained or
// closed. An unknown year fails before any row is read, and the reader is
// closed.
func (p *Processor) Process(year int, r io.ReadCloser) (*Stream, error) {
	l, err := p.layouts.GetByteRanges(year)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to process source file of %d: %w", year, err)
	}

	sourceFileID := namcs.SourceFileID(year)
	p.log.Info().Str("sourceFile", sourceFileID).Int("fields", len(l)).Msg("Processing source file")

	return newStream(p, sourceFileID, l, r), nil
}

// ProcessAll drains the source file of year and returns all its records.
func (p *Processor) ProcessAll(year int, r io.ReadCloser) ([]namcs.Record, []namcs.ErrorEntry, error) {
	stream, err := p.Process(year, r)
	if err != nil {
		return nil, nil, err
	}
	defer stream.Close()

	var records []namcs.Record
	for stream.Next() {
		records = append(records, stream.Record())
	}
	return records, stream.Errors(), stream.Err()
}

// normalize decodes one line into rec and fills the derived fields. rec holds
// every field computed before a failure.
func (p *Processor) normalize(line string, l layout.Layout, rec namcs.Record) error {
	if err := p.decoder.Decode(line, l, rec); err != nil {
		return err
	}
	return p.resolver.Resolve(rec)
}
