package decoder

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/transform"
	"github.com/SanteonNL/ahcd/models/namcs"
)

var ErrMissingTransform = errors.New("missing transform")

// MissingTransformError is returned when a canonical field is neither in the
// year layout nor computable by a registered transform.
type MissingTransformError struct {
	Field string
}

func (e *MissingTransformError) Error() string {
	return fmt.Sprintf("%s: no layout mapping or transform for field %s", ErrMissingTransform, e.Field)
}

func (e *MissingTransformError) Unwrap() error { return ErrMissingTransform }

// ResolverService computes canonical fields that a year layout does not carry.
type ResolverService struct {
	transforms *transform.Registry
	fields     []string
	log        zerolog.Logger
}

// NewResolverService creates a resolver for the canonical output fields.
func NewResolverService(transforms *transform.Registry, log zerolog.Logger) *ResolverService {
	return &ResolverService{
		transforms: transforms,
		fields:     namcs.ConvertedFields,
		log:        log,
	}
}

// Resolve adds every missing canonical field to rec, deriving it from the
// fields present so far. Fields are resolved in canonical order so later
// fields can use earlier derived ones. A failing field is left absent and the
// remaining fields are still resolved; all failures are returned joined.
func (svc *ResolverService) Resolve(rec namcs.Record) error {
	var errs []error
	for _, field := range svc.fields {
		if _, ok := rec[field]; ok {
			continue
		}
		t, ok := svc.transforms.Lookup(field)
		if !ok {
			errs = append(errs, &MissingTransformError{Field: field})
			continue
		}
		v, err := t.Derive(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rec[field] = v
		svc.log.Trace().Str("field", field).Str("transform", t.Name()).Msg("Derived missing field")
	}
	return errors.Join(errs...)
}

// Project drops every field outside the canonical output set.
func (svc *ResolverService) Project(rec namcs.Record) {
	rec.Project(svc.fields)
}
