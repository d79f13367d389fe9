package fetch

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/catalog"
	"github.com/SanteonNL/ahcd/util"
)

// Downloader retrieves the NAMCS public use archives and extracts their data
// file under its normalized name.
type Downloader struct {
	client      *http.Client
	baseURL     string
	downloadDir string
	extractDir  string
	log         zerolog.Logger
}

// Options configure a Downloader.
type Options struct {
	DownloadDir string
	ExtractDir  string
	Retries     int
	Timeout     time.Duration
	// BaseURL replaces catalog.BaseURL when set.
	BaseURL string
}

// NewDownloader creates a new Downloader
func NewDownloader(opts Options, log zerolog.Logger) *Downloader {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	retryClient.Logger = retryLogger{log: log}
	retryClient.HTTPClient = &http.Client{
		Timeout: opts.Timeout,
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = catalog.BaseURL
	}

	return &Downloader{
		client:      retryClient.StandardClient(),
		baseURL:     baseURL,
		downloadDir: opts.DownloadDir,
		extractDir:  opts.ExtractDir,
		log:         log,
	}
}

// DatasetPath returns the location of the extracted data file of year.
func (d *Downloader) DatasetPath(year int) string {
	return filepath.Join(d.extractDir, catalog.DatasetFileName(year))
}

// Ensure makes the data file of year available, downloading it unless it
// already exists or force is set.
func (d *Downloader) Ensure(ctx context.Context, year int, force bool) (string, error) {
	path := d.DatasetPath(year)
	if util.FileExists(path) && !force {
		d.log.Debug().Int("year", year).Str("file", path).Msg("Data file already present")
		return path, nil
	}

	archive, err := d.Download(ctx, year)
	if err != nil {
		return "", err
	}
	if err := d.Extract(year, archive); err != nil {
		return "", err
	}
	if err := os.Remove(archive); err != nil {
		d.log.Warn().Err(err).Str("file", archive).Msg("Failed to delete archive")
	}
	return d.Rename(year)
}

// Download stores the public archive of year in the download directory and
// returns its path.
func (d *Downloader) Download(ctx context.Context, year int) (string, error) {
	info, err := catalog.SourceFileInfo(year)
	if err != nil {
		return "", err
	}
	url := d.baseURL + strings.TrimPrefix(info.URL, catalog.BaseURL)

	if err := os.MkdirAll(d.downloadDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	path := filepath.Join(d.downloadDir, catalog.ArchiveFileName(year))

	d.log.Info().Int("year", year).Str("url", url).Msg("Downloading file")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to write archive %s: %w", path, err)
	}
	d.log.Debug().Int64("bytes", n).Str("file", path).Msg("Downloaded archive")
	return path, file.Close()
}

// Extract unpacks archive into the extract directory. Self-extracting .exe
// archives are zip files with a prepended stub and are read the same way.
func (d *Downloader) Extract(year int, archive string) error {
	d.log.Debug().Int("year", year).Str("file", archive).Msg("Extracting archive")

	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archive, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := d.extractFile(f); err != nil {
			return err
		}
	}
	return nil
}

func (d *Downloader) extractFile(f *zip.File) error {
	target := filepath.Join(d.extractDir, f.Name)
	if !strings.HasPrefix(target, filepath.Clean(d.extractDir)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal file path in archive: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, os.ModePerm)
	}
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return dst.Close()
}

// Rename gives the extracted data file of year its normalized name.
func (d *Downloader) Rename(year int) (string, error) {
	names, err := catalog.ExtractedFileNames(year)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		from := filepath.Join(d.extractDir, name)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		to := d.DatasetPath(year)
		if err := os.Rename(from, to); err != nil {
			return "", fmt.Errorf("failed to rename %s: %w", from, err)
		}
		return to, nil
	}
	return "", fmt.Errorf("no extracted data file %s found for %d: %w", strings.Join(names, " or "), year, os.ErrNotExist)
}
