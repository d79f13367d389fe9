package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/config"
	"github.com/SanteonNL/ahcd/cmd/ahcd/decoder"
	"github.com/SanteonNL/ahcd/cmd/ahcd/layout"
	"github.com/SanteonNL/ahcd/cmd/ahcd/pipeline"
	"github.com/SanteonNL/ahcd/cmd/ahcd/transform"
)

const usage = `usage: ahcd <command> [flags]

commands:
  convert   convert NAMCS data files to CSV
  serve     serve layouts and record decoding over HTTP
  years     list the available survey years
`

func main() {
	log := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = os.Stdout })).With().Timestamp().Caller().Logger()

	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("ahcd failed")
	}
}

func run(args []string, stdout io.Writer, log zerolog.Logger) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	switch args[0] {
	case "convert":
		return runConvert(args[1:], cfg, stdout)
	case "serve":
		return runServe(args[1:], cfg, log.Level(cfg.LogLevel))
	case "years":
		return runYears(stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprint(stdout, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

// engine is the decode and normalize stack shared by the commands.
type engine struct {
	layouts    *layout.Registry
	transforms *transform.Registry
}

func newEngine() (*engine, error) {
	layouts, err := layout.NewDefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build layout registry: %w", err)
	}
	transforms, err := transform.NewDefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build transform registry: %w", err)
	}
	return &engine{layouts: layouts, transforms: transforms}, nil
}

func (e *engine) processor(sink pipeline.ErrorSink, opts pipeline.Options, log zerolog.Logger) *pipeline.Processor {
	return pipeline.NewProcessor(
		e.layouts,
		decoder.NewDecoderService(e.transforms, log),
		decoder.NewResolverService(e.transforms, log),
		sink,
		opts,
		log,
	)
}

// parseYears parses a comma separated list of years.
func parseYears(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}
