package catalog

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/SanteonNL/ahcd/models/namcs"
)

// BaseURL serves the NAMCS public use files.
const BaseURL = "https://ftp.cdc.gov/pub/Health_Statistics/NCHS/"

const (
	firstYear = 1973
	lastYear  = 2015
)

// Survey years without a public use file.
var missingYears = []int{1974, 1982, 1983, 1984, 1986, 1987, 1988, 1991}

// YearsAvailable lists the years with a published NAMCS public use file.
var YearsAvailable = availableYears()

func availableYears() []int {
	var years []int
	for y := firstYear; y <= lastYear; y++ {
		if !slices.Contains(missingYears, y) {
			years = append(years, y)
		}
	}
	return years
}

var (
	baseFileNames = new(RangeTable[string]).
			Set(Years(1973, 1999), "namcs").
			Set(Years(2000, 2009), "NAMCS").
			Set(Years(2010, 2015), "namcs20")

	extractedFileNames = new(RangeTable[[]string]).
				Set(Years(1973, 2009), []string{"NAMCS", "NAM"}).
				Set(Year(2010), []string{"NAMCS20"}).
				Set(Years(2011, 2015), []string{"namcs20"})

	fileURLs = new(RangeTable[string]).
			Set(Years(1973, 1992), BaseURL+"namcs_public_use_files/").
			Set(Years(1993, 2015), BaseURL+"Datasets/NAMCS/")

	fileExtensions = new(RangeTable[string]).
			Set(Years(1973, 2010), ".exe").
			Set(Year(2011), ".zip").
			Set(Year(2012), ".exe").
			Set(Years(2013, 2015), ".zip")

	// Record lengths exclude the line terminator.
	recordLengths = new(RangeTable[int]).
			Set(Years(1973, 1976), 92).
			Set(Years(1977, 1978), 90).
			Set(Year(1979), 99).
			Set(Years(1980, 1981), 143).
			Set(Year(1985), 146).
			Set(Years(1989, 1990), 153).
			Set(Year(1992), 355).
			Set(Years(1993, 1996), 542).
			Set(Years(1997, 2000), 663).
			Set(Year(2001), 679).
			Set(Year(2002), 741).
			Set(Years(2003, 2004), 792).
			Set(Year(2005), 778).
			Set(Year(2006), 905).
			Set(Years(2007, 2008), 997).
			Set(Year(2009), 980).
			Set(Year(2010), 1065).
			Set(Year(2011), 1064).
			Set(Year(2012), 1414).
			Set(Year(2013), 1394).
			Set(Year(2014), 2754).
			Set(Year(2015), 2713)
)

// SourceFile describes the public archive of one survey year.
type SourceFile struct {
	Year        int    `json:"year"`
	ShortYear   string `json:"short_year"`
	ArchiveName string `json:"archive_name"`
	URL         string `json:"url"`
}

// IsAvailable reports whether a public use file exists for year.
func IsAvailable(year int) bool {
	return slices.Contains(YearsAvailable, year)
}

// ShortYear returns the two digit representation of year.
func ShortYear(year int) string {
	return fmt.Sprintf("%02d", year%100)
}

// SourceFileInfo returns the archive name and download URL of year.
func SourceFileInfo(year int) (SourceFile, error) {
	if !IsAvailable(year) {
		return SourceFile{}, fmt.Errorf("no NAMCS public use file for %d", year)
	}
	base, err := baseFileNames.Get(year)
	if err != nil {
		return SourceFile{}, err
	}
	ext, err := fileExtensions.Get(year)
	if err != nil {
		return SourceFile{}, err
	}
	url, err := fileURLs.Get(year)
	if err != nil {
		return SourceFile{}, err
	}

	short := ShortYear(year)
	archive := base + short + ext
	return SourceFile{
		Year:        year,
		ShortYear:   short,
		ArchiveName: archive,
		URL:         url + archive,
	}, nil
}

// ExtractedFileNames returns the names an extracted data file of year may
// have, e.g. NAMCS73 or NAM73.
func ExtractedFileNames(year int) ([]string, error) {
	prefixes, err := extractedFileNames.Get(year)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(prefixes))
	for i, p := range prefixes {
		names[i] = p + ShortYear(year)
	}
	return names, nil
}

// RecordLength returns the expected record length of year.
func RecordLength(year int) (int, error) {
	return recordLengths.Get(year)
}

// DatasetFileName returns the normalized name of the extracted data file.
func DatasetFileName(year int) string {
	return namcs.SourceFileID(year)
}

// ConvertedFileName returns the name of the converted CSV of year.
func ConvertedFileName(year int) string {
	return namcs.SourceFileID(year) + "_CONVERTED.csv"
}

// ErrorFileName returns the name of the error file of year.
func ErrorFileName(year int) string {
	return namcs.SourceFileID(year) + ".err"
}

// ArchiveFileName returns the local name of the downloaded archive.
func ArchiveFileName(year int) string {
	return fmt.Sprintf("NAMCS_DATA_%d.zip", year)
}

// SourceFilesInfoName is the summary written after a conversion run.
const SourceFilesInfoName = "SOURCE_FILES_INFO.csv"
