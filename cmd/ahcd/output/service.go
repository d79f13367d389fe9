package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// OutputManager handles the files written by a conversion run: the converted
// CSV files, the error files and the run log.
type OutputManager struct {
	dataDir   string
	errorsDir string
	timestamp string
	logFile   *os.File
	log       zerolog.Logger
}

// NewOutputManager creates a new OutputManager writing converted files to
// dataDir and error files to errorsDir. The returned logger tees console
// output into logs/app_<timestamp>.log below dataDir.
func NewOutputManager(dataDir, errorsDir string, level zerolog.Level) (*OutputManager, error) {
	timestamp := time.Now().Format("20060102_150405")

	for _, dir := range []string{dataDir, errorsDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	logsDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logsDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(logsDir, fmt.Sprintf("app_%s.log", timestamp)))
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stdout
	})
	multiWriter := zerolog.MultiLevelWriter(consoleWriter, logFile)

	combinedLogger := zerolog.New(multiWriter).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()

	return &OutputManager{
		dataDir:   dataDir,
		errorsDir: errorsDir,
		timestamp: timestamp,
		logFile:   logFile,
		log:       combinedLogger,
	}, nil
}

// GetLogger returns the configured logger
func (om *OutputManager) GetLogger() zerolog.Logger {
	return om.log
}

// GetTimestamp returns the timestamp of the run
func (om *OutputManager) GetTimestamp() string {
	return om.timestamp
}

// GetOutputPath returns the full path for a given filename in the data directory
func (om *OutputManager) GetOutputPath(filename string) string {
	return filepath.Join(om.dataDir, filename)
}

// GetErrorPath returns the full path for a given filename in the errors directory
func (om *OutputManager) GetErrorPath(filename string) string {
	return filepath.Join(om.errorsDir, filename)
}

// Close closes the log file.
func (om *OutputManager) Close() error {
	return om.logFile.Close()
}
