package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanteonNL/ahcd/cmd/ahcd/catalog"
)

func line1973(sex string) string {
	b := []byte(strings.Repeat(" ", 92))
	for offset, v := range map[int]string{
		1: "06", 3: "73", 5: "05", 7: "10", 9: sex,
		39: "1381", 43: "2010", 47: "Y997", 71: "0000012345",
	} {
		copy(b[offset-1:], v)
	}
	return string(b)
}

func setupDataDir(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AHCD_DATA_DIR", dir)
	t.Setenv("AHCD_LOG_LEVEL", "error")
	t.Setenv("AHCD_DATABASE_URL", "")

	extracted := filepath.Join(dir, "extracted_data")
	require.NoError(t, os.MkdirAll(extracted, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(extracted, "1973_NAMCS"), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return dir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestParseYears(t *testing.T) {
	years, err := parseYears("1973, 1975,2015")
	require.NoError(t, err)
	assert.Equal(t, []int{1973, 1975, 2015}, years)

	years, err = parseYears("")
	require.NoError(t, err)
	assert.Nil(t, years)

	_, err = parseYears("1973,abc")
	assert.Error(t, err)
}

func TestParseConvertFlags(t *testing.T) {
	f, err := parseConvertFlags([]string{"-file", "/data/1985_NAMCS", "-no-validate"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []int{1985}, f.years)
	assert.True(t, f.noValidate)

	f, err = parseConvertFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, catalog.YearsAvailable, f.years)
}

func TestConvert(t *testing.T) {
	dir := setupDataDir(t, line1973("1"), line1973("x"), line1973("2"))

	var out bytes.Buffer
	require.NoError(t, run([]string{"convert", "-year", "1973"}, &out, zerolog.Nop()))

	converted := readLines(t, filepath.Join(dir, "1973_NAMCS_CONVERTED.csv"))
	require.Len(t, converted, 4)
	assert.Equal(t, strings.Join([]string{
		"source_file_ID", "source_file_row", "month_of_visit", "year_of_visit",
		"sex", "age", "physician_diagnoses", "patient_visit_weight",
	}, ","), converted[0])
	assert.True(t, strings.HasPrefix(converted[1], "1973_NAMCS,1,June,1973,Female,23042,"))
	assert.True(t, strings.HasPrefix(converted[2], "1973_NAMCS,2,June,1973,,,"))

	errs := readLines(t, filepath.Join(dir, "errors", "1973_NAMCS.err"))
	require.Len(t, errs, 2)
	assert.Equal(t, "record_no,exception,record", errs[0])
	assert.True(t, strings.HasPrefix(errs[1], "2,"))

	info := readLines(t, filepath.Join(dir, "SOURCE_FILES_INFO.csv"))
	require.Len(t, info, 2)
	assert.True(t, strings.HasPrefix(info[1], "1973,"))
}

func TestConvertRemovesStaleErrorFile(t *testing.T) {
	dir := setupDataDir(t, line1973("1"))
	errorsDir := filepath.Join(dir, "errors")
	require.NoError(t, os.MkdirAll(errorsDir, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(errorsDir, "1973_NAMCS.err"), []byte("old"), 0o644))

	require.NoError(t, run([]string{"convert", "-year", "1973"}, &bytes.Buffer{}, zerolog.Nop()))
	assert.NoFileExists(t, filepath.Join(errorsDir, "1973_NAMCS.err"))
	assert.FileExists(t, filepath.Join(dir, "1973_NAMCS_CONVERTED.csv"))
}

func TestConvertPeek(t *testing.T) {
	dir := setupDataDir(t, line1973("2"), line1973("1"))

	var out bytes.Buffer
	require.NoError(t, run([]string{"convert", "-year", "1973", "-peek"}, &out, zerolog.Nop()))
	assert.Contains(t, out.String(), "1973_NAMCS")
	assert.Contains(t, out.String(), "Male")
	assert.NoFileExists(t, filepath.Join(dir, "1973_NAMCS_CONVERTED.csv"))
}

func TestConvertInvalidArguments(t *testing.T) {
	setupDataDir(t)
	err := run([]string{"convert", "-year", "1974"}, &bytes.Buffer{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestConvertMissingDataFile(t *testing.T) {
	dir := setupDataDir(t, line1973("1"))

	err := run([]string{"convert", "-year", "1975"}, &bytes.Buffer{}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year 1975")
	assert.NoFileExists(t, filepath.Join(dir, "SOURCE_FILES_INFO.csv"))
}

func TestConvertReportsFailedYears(t *testing.T) {
	dir := setupDataDir(t, line1973("1"))

	err := run([]string{"convert", "-year", "1973,1975"}, &bytes.Buffer{}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year 1975")
	assert.NotContains(t, err.Error(), "year 1973")

	assert.FileExists(t, filepath.Join(dir, "1973_NAMCS_CONVERTED.csv"))
	info := readLines(t, filepath.Join(dir, "SOURCE_FILES_INFO.csv"))
	require.Len(t, info, 2)
	assert.True(t, strings.HasPrefix(info[1], "1973,"))
}

func TestYearsCommand(t *testing.T) {
	setupDataDir(t)
	var out bytes.Buffer
	require.NoError(t, run([]string{"years"}, &out, zerolog.Nop()))
	assert.Contains(t, out.String(), "namcs73.exe")
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), len(catalog.YearsAvailable)+1)
}

func TestUnknownCommand(t *testing.T) {
	setupDataDir(t)
	assert.Error(t, run([]string{"frobnicate"}, &bytes.Buffer{}, zerolog.Nop()))
	assert.Error(t, run(nil, &bytes.Buffer{}, zerolog.Nop()))
}
