package transform

import (
	"errors"
	"fmt"
	"regexp"


	"github.com/SanteonNL/ahcd/models/namcs"
)

// Shape is the declared type of a transform's result.
type Shape int

const (
	ShapeString Shape = iota
	ShapeFloat
	ShapePair
)

func (s Shape) String() string {
	switch s {
	case ShapeString:
		return "string"
	case ShapeFloat:
		return "float64"
	case ShapePair:
		return "[2]string"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

func (s Shape) matches(v any) bool {
	switch s {
	case ShapeString:
		_, ok := v.(string)
		return ok
	case ShapeFloat:
		_, ok := v.(float64)
		return ok
	case ShapePair:
		_, ok := v.([2]string)
		return ok
	}
	return false
}

// Input carries the arguments of one transform call. Raw holds the raw
// substrings of the field's own byte range; it is nil when the field is
// derived from the already decoded fields of the record.
type Input struct {
	Field  string
	Raw    []string
	Fields namcs.Record
}

// Derived reports whether the call computes a field missing from the layout.
func (in Input) Derived() bool {
	return in.Raw == nil
}

// Func converts raw tokens, or decoded fields, into a normalized value.
type Func func(in Input) (any, error)

// Definition registers one function for one or more canonical fields.
type Definition struct {
	Name    string
	Fields  []string
	Func    Func
	Arity   int
	Pattern string
	Returns Shape
}

type definition struct {
	Definition
	pattern *regexp.Regexp
}

// Registry maps canonical field names to transforms. It is append-only.
type Registry struct {
	byField map[string]*definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byField: make(map[string]*definition)}
}

// NewDefaultRegistry returns a registry holding the built-in transforms.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, def := range Builtins() {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds def for every field it names. A field can only be registered
// once.
func (r *Registry) Register(def Definition) error {
	if def.Func == nil {
		return fmt.Errorf("transform %s: nil function", def.Name)
	}
	if len(def.Fields) == 0 {
		return fmt.Errorf("transform %s: no fields", def.Name)
	}
	if def.Arity < 1 {
		return fmt.Errorf("transform %s: arity must be positive", def.Name)
	}

	d := &definition{Definition: def}
	if def.Pattern != "" {
		re, err := regexp.Compile(def.Pattern)
		if err != nil {
			return fmt.Errorf("transform %s: invalid pattern: %w", def.Name, err)
		}
		d.pattern = re
	}

	for _, f := range def.Fields {
		if _, exists := r.byField[f]; exists {
			return fmt.Errorf("transform %s: field %s already registered", def.Name, f)
		}
	}
	for _, f := range def.Fields {
		r.byField[f] = d
	}
	return nil
}

// Lookup returns the transform of field. The second result is false when no
// transform is registered; callers then keep the raw value.
func (r *Registry) Lookup(field string) (Transform, bool) {
	d, ok := r.byField[field]
	if !ok {
		return Transform{}, false
	}
	return Transform{field: field, def: d}, true
}

// Transform is a registered function bound to one field.
type Transform struct {
	field string
	def   *definition
}

// Name returns the name of the underlying function.
func (t Transform) Name() string {
	return t.def.Name
}

// Apply validates raw against the pattern and converts it.
func (t Transform) Apply(raw ...string) (any, error) {
	if len(raw) != t.def.Arity {
		return nil, contractf(t.field, t.def.Name, "expected %d raw values, got %d", t.def.Arity, len(raw))
	}
	if t.def.pattern != nil {
		for _, v := range raw {
			if !t.def.pattern.MatchString(v) {
				return nil, &FieldFormatError{Field: t.field, Value: v, Pattern: t.def.Pattern}
			}
		}
	}
	return t.call(Input{Field: t.field, Raw: raw})
}

// Derive computes the field from the fields decoded so far.
func (t Transform) Derive(fields namcs.Record) (any, error) {
	return t.call(Input{Field: t.field, Fields: fields})
}

func (t Transform) call(in Input) (any, error) {
	v, err := t.def.Func(in)
	if err != nil {
		var formatErr *FieldFormatError
		var contractErr *ContractError
		if errors.As(err, &formatErr) || errors.As(err, &contractErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to map field %s: %w", t.field, err)
	}
	if !t.def.Returns.matches(v) {
		return nil, contractf(t.field, t.def.Name, "expected %s result, got %T", t.def.Returns, v)
	}
	return v, nil
}
