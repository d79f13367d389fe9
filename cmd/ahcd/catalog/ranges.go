package catalog

import (
	"fmt"
)

// YearRange is an inclusive range of survey years.
type YearRange struct {
	From, To int
}

// Year returns the range holding a single year.
func Year(year int) YearRange {
	return YearRange{From: year, To: year}
}

// Years returns the inclusive range from..to.
func Years(from, to int) YearRange {
	return YearRange{From: from, To: to}
}

func (r YearRange) contains(year int) bool {
	return year >= r.From && year <= r.To
}

type rangeEntry[T any] struct {
	years YearRange
	value T
}

// RangeTable maps ranges of years to a value.
type RangeTable[T any] struct {
	entries []rangeEntry[T]
}

// Set adds a value for every year in r.
func (t *RangeTable[T]) Set(r YearRange, value T) *RangeTable[T] {
	t.entries = append(t.entries, rangeEntry[T]{years: r, value: value})
	return t
}

// Get returns the value of the first range containing year.
func (t *RangeTable[T]) Get(year int) (T, error) {
	for _, e := range t.entries {
		if e.years.contains(year) {
			return e.value, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("cannot find %d in range table", year)
}
