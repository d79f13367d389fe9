package namcs

import (
	"fmt"
	"time"
)

// Layouts tried, in order, when a raw month or year token is parsed.
var (
	MonthLayouts = []string{"01", "Jan", "January"}
	YearLayouts  = []string{"06", "2006"}
)

// ParseMonth parses a month token using MonthLayouts.
func ParseMonth(s string) (time.Month, error) {
	t, err := parseFirst(s, MonthLayouts)
	if err != nil {
		return 0, err
	}
	return t.Month(), nil
}

// ParseYear parses a two or four digit year using YearLayouts. Two digit years
// 69-99 map to 1969-1999 and 00-68 to 2000-2068.
func ParseYear(s string) (int, error) {
	t, err := parseFirst(s, YearLayouts)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}

// ParseMonthYear parses a full month name and a four digit year, e.g.
// ("June", "1974"), into the first day of that month.
func ParseMonthYear(month, year string) (time.Time, error) {
	t, err := time.Parse("January2006", month+year)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month/year %q/%q: %w", month, year, err)
	}
	return t, nil
}

func parseFirst(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %s", s)
}
