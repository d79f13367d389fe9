package layout

import (
	"fmt"
)

// FieldSpec locates one field within a fixed-width record. Offset is 1-indexed
// and inclusive, as printed in the NAMCS record layout documentation.
type FieldSpec struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// Range returns the zero-indexed, half-open byte range of the spec.
func (s FieldSpec) Range() ByteRange {
	start := s.Offset - 1
	if s.Length > 1 {
		return ByteRange{Start: start, End: start + s.Length}
	}
	return ByteRange{Start: start, End: s.Offset}
}

// ByteRange is a zero-indexed half-open [Start, End) range.
type ByteRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Slice extracts the range from line. Ranges reaching past the end of the
// line are cut short instead of failing.
func (r ByteRange) Slice(line string) string {
	start, end := r.Start, r.End
	if start > len(line) {
		start = len(line)
	}
	if end > len(line) {
		end = len(line)
	}
	if start > end {
		return ""
	}
	return line[start:end]
}

// Entry is one declaration in a year schema: a single field or an ordered
// group of slots collapsed into one logical field.
type Entry struct {
	Specs []FieldSpec
	multi bool
}

// Field declares a single-slot field.
func Field(name string, offset, length int) Entry {
	return Entry{Specs: []FieldSpec{{Name: name, Offset: offset, Length: length}}}
}

// Slots declares a multi-slot field named after the first spec.
func Slots(specs ...FieldSpec) Entry {
	return Entry{Specs: specs, multi: true}
}

// Name returns the logical field name of the entry.
func (e Entry) Name() string {
	if len(e.Specs) == 0 {
		return ""
	}
	return e.Specs[0].Name
}

// Multi reports whether the entry is a multi-slot field.
func (e Entry) Multi() bool {
	return e.multi
}

// YearSchema is the record layout of one dataset revision.
type YearSchema struct {
	Year    int
	Entries []Entry
}

// Derive builds the schema for year by copying base and applying overrides.
// An override replaces the base entry with the same name; new names are
// appended.
func Derive(base YearSchema, year int, overrides ...Entry) YearSchema {
	entries := make([]Entry, len(base.Entries))
	copy(entries, base.Entries)

	for _, o := range overrides {
		replaced := false
		for i, e := range entries {
			if e.Name() == o.Name() {
				entries[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, o)
		}
	}
	return YearSchema{Year: year, Entries: entries}
}

// FieldRange is the resolved byte location of one logical field.
type FieldRange struct {
	Name   string      `json:"name"`
	Ranges []ByteRange `json:"ranges"`
	Multi  bool        `json:"multi"`
}

// Layout is the ordered list of resolved fields of a year.
type Layout []FieldRange

// Lookup returns the range set of a field.
func (l Layout) Lookup(name string) (FieldRange, bool) {
	for _, f := range l {
		if f.Name == name {
			return f, true
		}
	}
	return FieldRange{}, false
}

// Has reports whether the layout maps name.
func (l Layout) Has(name string) bool {
	_, ok := l.Lookup(name)
	return ok
}

// Names returns the field names in layout order.
func (l Layout) Names() []string {
	names := make([]string, len(l))
	for i, f := range l {
		names[i] = f.Name
	}
	return names
}

func (s FieldSpec) String() string {
	return fmt.Sprintf("%s@%d+%d", s.Name, s.Offset, s.Length)
}
