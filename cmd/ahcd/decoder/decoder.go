package decoder

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/layout"
	"github.com/SanteonNL/ahcd/cmd/ahcd/transform"
	"github.com/SanteonNL/ahcd/models/namcs"
)

// DecoderService slices fixed-width lines and normalizes every field with its
// registered transform.
type DecoderService struct {
	transforms *transform.Registry
	log        zerolog.Logger
}

// NewDecoderService creates a new DecoderService
func NewDecoderService(transforms *transform.Registry, log zerolog.Logger) *DecoderService {
	return &DecoderService{
		transforms: transforms,
		log:        log,
	}
}

// Decode fills rec with the fields of line described by l, in layout order.
// Decoding stops at the first failing field; rec keeps the fields decoded
// before it.
func (svc *DecoderService) Decode(line string, l layout.Layout, rec namcs.Record) error {
	line = strings.TrimRight(line, "\r\n")

	for _, field := range l {
		t, hasTransform := svc.transforms.Lookup(field.Name)

		if !field.Multi {
			raw := field.Ranges[0].Slice(line)
			if !hasTransform {
				rec[field.Name] = raw
				continue
			}
			v, err := t.Apply(raw)
			if err != nil {
				return svc.fail(field.Name, err)
			}
			rec[field.Name] = v
			continue
		}

		slots := make([]string, 0, len(field.Ranges))
		for i, r := range field.Ranges {
			raw := r.Slice(line)
			if !hasTransform {
				slots = append(slots, raw)
				continue
			}
			v, err := t.Apply(raw)
			if err != nil {
				return svc.fail(field.Name, fmt.Errorf("slot %d: %w", i+1, err))
			}
			s, ok := v.(string)
			if !ok {
				return svc.fail(field.Name, &transform.ContractError{
					Field:     field.Name,
					Transform: t.Name(),
					Msg:       fmt.Sprintf("multi-slot field needs string values, got %T", v),
				})
			}
			slots = append(slots, s)
		}
		rec[field.Name] = slots
	}
	return nil
}

func (svc *DecoderService) fail(field string, err error) error {
	svc.log.Trace().Str("field", field).Err(err).Msg("Failed to decode field")
	return err
}
