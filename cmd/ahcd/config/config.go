package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/util"
)

// Environment variables read by Load.
const (
	EnvDataDir            = "AHCD_DATA_DIR"
	EnvLogLevel           = "AHCD_LOG_LEVEL"
	EnvDatabaseURL        = "AHCD_DATABASE_URL"
	EnvHTTPAddr           = "AHCD_HTTP_ADDR"
	EnvDownloadRetries    = "AHCD_DOWNLOAD_RETRIES"
	EnvDownloadTimeout    = "AHCD_DOWNLOAD_TIMEOUT"
	EnvDropBlankDiagnoses = "AHCD_DROP_BLANK_DIAGNOSES"
)

// Config holds the runtime settings of the ahcd tool.
type Config struct {
	DataDir            string
	LogLevel           zerolog.Level
	DatabaseURL        string
	HTTPAddr           string
	DownloadRetries    int
	DownloadTimeout    time.Duration
	DropBlankDiagnoses bool
}

// DownloadDir holds the downloaded archives.
func (c Config) DownloadDir() string {
	return filepath.Join(c.DataDir, "downloaded_files")
}

// ExtractDir holds the extracted, renamed data files.
func (c Config) ExtractDir() string {
	return filepath.Join(c.DataDir, "extracted_data")
}

// ErrorsDir holds the error files.
func (c Config) ErrorsDir() string {
	return filepath.Join(c.DataDir, "errors")
}

// Load reads envFile when it exists and builds the configuration from the
// environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		DataDir:         os.Getenv(EnvDataDir),
		DatabaseURL:     os.Getenv(EnvDatabaseURL),
		HTTPAddr:        getenv(EnvHTTPAddr, ":8080"),
		DownloadRetries: 3,
		DownloadTimeout: 60 * time.Second,
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "~/.hdx_ahcd/data"
	}
	dataDir, err := util.GetAbsolutePath(cfg.DataDir)
	if err != nil {
		return Config{}, err
	}
	cfg.DataDir = dataDir

	level, err := zerolog.ParseLevel(getenv(EnvLogLevel, "info"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
	}
	cfg.LogLevel = level

	if v := os.Getenv(EnvDownloadRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvDownloadRetries, v)
		}
		cfg.DownloadRetries = n
	}

	if v := os.Getenv(EnvDownloadTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvDownloadTimeout, err)
		}
		cfg.DownloadTimeout = d
	}

	if v := os.Getenv(EnvDropBlankDiagnoses); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvDropBlankDiagnoses, err)
		}
		cfg.DropBlankDiagnoses = b
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
