package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/catalog"
	"github.com/SanteonNL/ahcd/cmd/ahcd/config"
	"github.com/SanteonNL/ahcd/cmd/ahcd/fetch"
	"github.com/SanteonNL/ahcd/cmd/ahcd/output"
	"github.com/SanteonNL/ahcd/cmd/ahcd/pipeline"
	"github.com/SanteonNL/ahcd/cmd/ahcd/source"
	"github.com/SanteonNL/ahcd/cmd/ahcd/store"
	"github.com/SanteonNL/ahcd/cmd/ahcd/validate"
	"github.com/SanteonNL/ahcd/models/namcs"
)

type convertFlags struct {
	years      []int
	file       string
	export     bool
	download   bool
	force      bool
	noValidate bool
	peek       bool
}

func parseConvertFlags(args []string, stderr io.Writer) (convertFlags, error) {
	var f convertFlags
	var years string

	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&years, "year", "", "comma separated survey years, default all available years")
	fs.StringVar(&f.file, "file", "", "data file in <YEAR>_NAMCS format, only with a single year")
	fs.BoolVar(&f.export, "export", false, "store converted records in Postgres (AHCD_DATABASE_URL)")
	fs.BoolVar(&f.download, "download", false, "download missing data files")
	fs.BoolVar(&f.force, "force", false, "download data files even when present")
	fs.BoolVar(&f.noValidate, "no-validate", false, "skip the record length check")
	fs.BoolVar(&f.peek, "peek", false, "print the first converted record of each file and stop")
	if err := fs.Parse(args); err != nil {
		return f, err
	}

	parsed, err := parseYears(years)
	if err != nil {
		return f, err
	}
	f.years = parsed
	if len(f.years) == 0 && f.file != "" {
		year, err := source.YearFromFileName(f.file)
		if err != nil {
			return f, err
		}
		f.years = []int{year}
	}
	if len(f.years) == 0 {
		f.years = catalog.YearsAvailable
	}
	return f, nil
}

// converter runs the conversion of one or more source files.
type converter struct {
	cfg        config.Config
	flags      convertFlags
	processor  *pipeline.Processor
	output     *output.OutputManager
	files      *source.FileSource
	downloader *fetch.Downloader
	visits     *store.VisitStore
	runs       *store.RunLog
	stdout     io.Writer
	log        zerolog.Logger
}

func runConvert(args []string, cfg config.Config, stdout io.Writer) error {
	flags, err := parseConvertFlags(args, stdout)
	if err != nil {
		return err
	}
	if r := validate.Arguments(flags.years, flags.file); !r.Valid() {
		return fmt.Errorf("invalid arguments: %w", r.Err())
	}

	om, err := output.NewOutputManager(cfg.DataDir, cfg.ErrorsDir(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer om.Close()
	log := om.GetLogger()

	e, err := newEngine()
	if err != nil {
		return err
	}

	c := &converter{
		cfg:       cfg,
		flags:     flags,
		processor: e.processor(om, pipeline.Options{DropBlankDiagnoses: cfg.DropBlankDiagnoses}, log),
		output:    om,
		files:     source.NewFileSource(cfg.ExtractDir(), log),
		stdout:    stdout,
		log:       log,
	}

	if flags.download {
		c.downloader = fetch.NewDownloader(fetch.Options{
			DownloadDir: cfg.DownloadDir(),
			ExtractDir:  cfg.ExtractDir(),
			Retries:     cfg.DownloadRetries,
			Timeout:     cfg.DownloadTimeout,
		}, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if flags.export {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("-export needs %s", config.EnvDatabaseURL)
		}
		db, err := store.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		c.visits = store.NewVisitStore(db, log)
		if err := c.visits.EnsureSchema(ctx); err != nil {
			return err
		}
		c.runs, err = store.OpenRunLog(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer c.runs.Close()
	}

	return c.convertAll(ctx)
}

// convertAll converts every requested year. A failing year does not stop the
// others; the failures are returned together.
func (c *converter) convertAll(ctx context.Context) error {
	var summaries []output.SourceFileSummary
	var errs []error
	for _, year := range c.flags.years {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		summary, err := c.convertYear(ctx, year)
		if err != nil {
			c.log.Error().Err(err).Int("year", year).Msg("Failed to convert source file")
			errs = append(errs, fmt.Errorf("year %d: %w", year, err))
			continue
		}
		if summary != nil {
			summaries = append(summaries, *summary)
		}
	}

	if !c.flags.peek && len(summaries) > 0 {
		if err := c.output.WriteSourceFilesInfo(catalog.SourceFilesInfoName, summaries); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *converter) convertYear(ctx context.Context, year int) (*output.SourceFileSummary, error) {
	started := time.Now()
	path, err := c.dataFile(ctx, year)
	if err != nil {
		return nil, err
	}

	if !c.flags.noValidate {
		if r := validate.DatasetRecords(year, path); !r.Valid() {
			return nil, fmt.Errorf("invalid data file: %w", r.Err())
		}
	}

	sourceFileID := namcs.SourceFileID(year)
	if err := c.output.RemoveStaleErrors(sourceFileID); err != nil {
		return nil, err
	}

	file, err := source.OpenFile(path, c.log)
	if err != nil {
		return nil, err
	}
	stream, err := c.processor.Process(year, file)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if c.flags.peek {
		if stream.Next() {
			fmt.Fprint(c.stdout, spew.Sdump(stream.Record()))
		}
		return nil, stream.Err()
	}

	records := &collectingSource{RecordSource: stream, keep: c.visits != nil}
	rows, err := c.output.WriteConverted(catalog.ConvertedFileName(year), records)
	if err != nil {
		return nil, err
	}

	summary := &output.SourceFileSummary{
		Year:          year,
		ConvertedFile: c.output.GetOutputPath(catalog.ConvertedFileName(year)),
		Rows:          rows,
		FailedRows:    len(stream.Errors()),
	}
	if info, err := catalog.SourceFileInfo(year); err == nil {
		summary.URL = info.URL
		summary.ArchiveName = info.ArchiveName
	}
	if summary.FailedRows > 0 {
		summary.ErrorFile = c.output.GetErrorPath(catalog.ErrorFileName(year))
	}

	if c.visits != nil {
		if err := c.visits.ReplaceSourceFile(ctx, sourceFileID, records.kept); err != nil {
			return nil, err
		}
		stored, err := c.visits.CountVisits(ctx, sourceFileID)
		if err != nil {
			return nil, err
		}
		if stored != len(records.kept) {
			return nil, fmt.Errorf("stored %d rows of %s, converted %d", stored, sourceFileID, len(records.kept))
		}
	}
	if c.runs != nil {
		run := &store.SourceFileRun{
			Run:           c.output.GetTimestamp(),
			SourceFileID:  sourceFileID,
			Year:          year,
			Rows:          summary.Rows,
			FailedRows:    summary.FailedRows,
			ConvertedFile: summary.ConvertedFile,
			ErrorFile:     summary.ErrorFile,
			StartedAt:     started,
			FinishedAt:    time.Now(),
		}
		if err := c.runs.Record(run); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// dataFile returns the data file of year, downloading it when requested.
func (c *converter) dataFile(ctx context.Context, year int) (string, error) {
	if c.flags.file != "" {
		return c.flags.file, nil
	}
	if c.downloader != nil {
		return c.downloader.Ensure(ctx, year, c.flags.force)
	}
	if !c.files.Exists(year) {
		return "", fmt.Errorf("data file %s not found, use -download to retrieve it", c.files.Path(year))
	}
	return c.files.Path(year), nil
}

// collectingSource keeps the records it passes on when keep is set.
type collectingSource struct {
	output.RecordSource
	keep bool
	kept []namcs.Record
}

func (s *collectingSource) Next() bool {
	if !s.RecordSource.Next() {
		return false
	}
	if s.keep {
		s.kept = append(s.kept, s.RecordSource.Record())
	}
	return true
}
