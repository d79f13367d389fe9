package layout

import (
	"golang.org/x/exp/slices"

	"github.com/SanteonNL/ahcd/models/namcs"
)

// RequiredFields must be declared by every year schema. Fields such as age or
// year_of_visit may be missing and are derived later.
var RequiredFields = []string{
	namcs.FieldMonthOfVisit,
	namcs.FieldSex,
	namcs.FieldPhysicianDiagnoses,
	namcs.FieldVisitWeight,
}

// Registry holds the validated schemas, one per year. It is built once and
// never mutated afterwards.
type Registry struct {
	schemas map[int]YearSchema
	layouts map[int]Layout
}

// NewRegistry validates and registers schemas. A year may only be registered
// once.
func NewRegistry(schemas ...YearSchema) (*Registry, error) {
	r := &Registry{
		schemas: make(map[int]YearSchema, len(schemas)),
		layouts: make(map[int]Layout, len(schemas)),
	}
	for _, s := range schemas {
		if _, exists := r.schemas[s.Year]; exists {
			return nil, invalidf(s.Year, "registered twice")
		}
		if err := Validate(s); err != nil {
			return nil, err
		}
		r.schemas[s.Year] = s
		r.layouts[s.Year] = resolve(s)
	}
	return r, nil
}

// Validate checks that a schema declares every required field and that all
// specs are well formed.
func Validate(s YearSchema) error {
	for _, e := range s.Entries {
		if len(e.Specs) == 0 {
			return invalidf(s.Year, "empty entry")
		}
		for _, spec := range e.Specs {
			if spec.Name == "" {
				return invalidf(s.Year, "field without name")
			}
			if spec.Offset < 1 || spec.Length < 1 {
				return invalidf(s.Year, "field %s has offset %d and length %d", spec.Name, spec.Offset, spec.Length)
			}
		}
	}

	layout := resolve(s)
	for _, name := range RequiredFields {
		if !layout.Has(name) {
			return invalidf(s.Year, "required field %s missing", name)
		}
	}
	return nil
}

// GetByteRanges returns the resolved layout of year. The returned slice is a
// copy owned by the caller.
func (r *Registry) GetByteRanges(year int) (Layout, error) {
	l, ok := r.layouts[year]
	if !ok {
		return nil, &SchemaNotFoundError{Year: year}
	}
	out := make(Layout, len(l))
	for i, f := range l {
		out[i] = FieldRange{
			Name:   f.Name,
			Ranges: append([]ByteRange(nil), f.Ranges...),
			Multi:  f.Multi,
		}
	}
	return out, nil
}

// Schema returns the registered schema of year.
func (r *Registry) Schema(year int) (YearSchema, error) {
	s, ok := r.schemas[year]
	if !ok {
		return YearSchema{}, &SchemaNotFoundError{Year: year}
	}
	return s, nil
}

// Years returns the registered years in ascending order.
func (r *Registry) Years() []int {
	years := make([]int, 0, len(r.schemas))
	for y := range r.schemas {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// resolve turns schema entries into byte ranges. Single-slot entries follow
// first-writer-wins; a multi-slot entry removes any mapping already made under
// the names of its slots and is stored under its first slot's name.
func resolve(s YearSchema) Layout {
	var l Layout
	for _, e := range s.Entries {
		if e.Multi() {
			for _, spec := range e.Specs {
				l = slices.DeleteFunc(l, func(f FieldRange) bool { return f.Name == spec.Name })
			}
			ranges := make([]ByteRange, len(e.Specs))
			for i, spec := range e.Specs {
				ranges[i] = spec.Range()
			}
			l = append(l, FieldRange{Name: e.Name(), Ranges: ranges, Multi: true})
			continue
		}

		spec := e.Specs[0]
		if l.Has(spec.Name) {
			continue
		}
		l = append(l, FieldRange{Name: spec.Name, Ranges: []ByteRange{spec.Range()}})
	}
	return l
}
