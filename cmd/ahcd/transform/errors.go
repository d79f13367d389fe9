package transform

import (
	"errors"
	"fmt"
)

var (
	ErrFieldFormat       = errors.New("field format")
	ErrTransformContract = errors.New("transform contract")
)

// FieldFormatError is returned when a raw token does not match the validation
// pattern of the field's transform.
type FieldFormatError struct {
	Field   string
	Value   string
	Pattern string
}

func (e *FieldFormatError) Error() string {
	return fmt.Sprintf("value %q for field %s does not match pattern %s", e.Value, e.Field, e.Pattern)
}

func (e *FieldFormatError) Unwrap() error { return ErrFieldFormat }

// ContractError is returned when a transform is called with the wrong number
// of inputs or returns a value of the wrong shape.
type ContractError struct {
	Field     string
	Transform string
	Msg       string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s (field %s): %s", ErrTransformContract, e.Transform, e.Field, e.Msg)
}

func (e *ContractError) Unwrap() error { return ErrTransformContract }

func contractf(field, name, format string, args ...any) error {
	return &ContractError{Field: field, Transform: name, Msg: fmt.Sprintf(format, args...)}
}
