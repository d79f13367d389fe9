package transform

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SanteonNL/ahcd/cmd/ahcd/diagnosis"
	"github.com/SanteonNL/ahcd/models/namcs"
)

const daysPerYear = 365

var errRawRequired = errors.New("raw value required")

// Builtins returns the transforms of the canonical NAMCS fields.
func Builtins() []Definition {
	return []Definition{
		{
			Name:    "year_and_month_from_date",
			Fields:  []string{namcs.FieldDateOfVisit, namcs.FieldDateOfBirth},
			Func:    yearAndMonthFromDate,
			Arity:   1,
			Pattern: `^(0[1-9]|1[012])([0-9]{2})$`,
			Returns: ShapePair,
		},
		{
			Name:    "physician_diagnosis_code",
			Fields:  []string{namcs.FieldPhysicianDiagnoses},
			Func:    physicianDiagnosisCode,
			Arity:   1,
			Pattern: `^([VY&0-9-][0-9]{3,5}|[V0-9][0-9]{2}[0-9-]{1,2})$`,
			Returns: ShapeString,
		},
		{
			Name:    "month_from_date",
			Fields:  []string{namcs.FieldMonthOfVisit, namcs.FieldMonthOfBirth},
			Func:    monthFromDate,
			Arity:   1,
			Pattern: `^((0[1-9]|1[012])|([A-Z][a-z]{2,8}))$`,
			Returns: ShapeString,
		},
		{
			Name:    "year_from_date",
			Fields:  []string{namcs.FieldYearOfVisit, namcs.FieldYearOfBirth},
			Func:    yearFromDate,
			Arity:   1,
			Pattern: `^([12][09])?[0-9]{2}$`,
			Returns: ShapeString,
		},
		{
			Name:    "gender",
			Fields:  []string{namcs.FieldSex},
			Func:    gender,
			Arity:   1,
			Pattern: `^[12]$`,
			Returns: ShapeString,
		},
		{
			Name:    "age_in_days",
			Fields:  []string{namcs.FieldAge},
			Func:    ageInDays,
			Arity:   1,
			Pattern: `^[01]?[0-9]{1,2}$`,
			Returns: ShapeFloat,
		},
		{
			Name:    "patient_visit_weight",
			Fields:  []string{namcs.FieldVisitWeight},
			Func:    patientVisitWeight,
			Arity:   1,
			Pattern: `^([0-9.]{5,6}|[0-9.]{10,11})$`,
			Returns: ShapeFloat,
		},
	}
}

// yearAndMonthFromDate splits an mmyy date into a four digit year and a
// month name.
func yearAndMonthFromDate(in Input) (any, error) {
	if in.Derived() {
		return nil, errRawRequired
	}
	date, err := time.Parse("0106", in.Raw[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFieldFormat, err)
	}
	return [2]string{strconv.Itoa(date.Year()), date.Month().String()}, nil
}

// datePair returns the (year, month) pair decoded for the event of in.Field.
func datePair(in Input) ([2]string, bool) {
	date := namcs.FieldDateOfVisit
	if in.Field == namcs.FieldMonthOfBirth || in.Field == namcs.FieldYearOfBirth {
		date = namcs.FieldDateOfBirth
	}
	pair, ok := in.Fields[date].([2]string)
	return pair, ok
}

func physicianDiagnosisCode(in Input) (any, error) {
	if in.Derived() {
		return nil, errRawRequired
	}
	return diagnosis.Normalize(in.Raw[0]), nil
}

// monthFromDate returns the full month name of a numeric or named month. A
// derived month is taken from the decoded mmyy date of the same event.
func monthFromDate(in Input) (any, error) {
	if in.Derived() {
		if pair, ok := datePair(in); ok {
			return pair[1], nil
		}
		return nil, errRawRequired
	}
	m, err := namcs.ParseMonth(in.Raw[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFieldFormat, err)
	}
	return m.String(), nil
}

// yearFromDate returns the four digit year of a two or four digit year. When
// the layout has no year it is taken from the decoded mmyy date, and a missing
// year of visit falls back to the source file id.
func yearFromDate(in Input) (any, error) {
	if in.Derived() {
		if pair, ok := datePair(in); ok {
			return pair[0], nil
		}
		if in.Field != namcs.FieldYearOfVisit {
			return nil, errRawRequired
		}
		id := in.Fields.SourceFileID()
		if id == "" {
			return nil, fmt.Errorf("cannot derive year: %s missing", namcs.FieldSourceFileID)
		}
		year, err := namcs.YearFromSourceFileID(id)
		if err != nil {
			return nil, err
		}
		return strconv.Itoa(year), nil
	}
	year, err := namcs.ParseYear(in.Raw[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFieldFormat, err)
	}
	return strconv.Itoa(year), nil
}

func gender(in Input) (any, error) {
	if in.Derived() {
		return nil, errRawRequired
	}
	switch in.Raw[0] {
	case "1":
		return namcs.GenderFemale, nil
	case "2":
		return namcs.GenderMale, nil
	}
	return nil, fmt.Errorf("%w: unknown sex code %q", ErrFieldFormat, in.Raw[0])
}

// ageInDays normalizes the patient age to days. A recorded age in years is
// multiplied by 365; without one the age is computed from the month and year
// of visit and birth.
func ageInDays(in Input) (any, error) {
	if !in.Derived() {
		return ageFromValue(in.Raw[0])
	}
	if v, ok := in.Fields[namcs.FieldAge]; ok {
		switch age := v.(type) {
		case string:
			return ageFromValue(age)
		case int:
			return float64(age * daysPerYear), nil
		case float64:
			return age, nil
		}
		return nil, fmt.Errorf("unexpected age value %T", v)
	}
	return ageFromDates(in.Fields)
}

func ageFromValue(raw string) (float64, error) {
	years, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFieldFormat, err)
	}
	return float64(years * daysPerYear), nil
}

// ageFromDates returns the days between birth and visit. Birth years are
// recorded with two digits, so a birth date after the visit date belongs to
// the previous century.
func ageFromDates(fields namcs.Record) (float64, error) {
	var parts [4]string
	for i, name := range []string{
		namcs.FieldMonthOfVisit,
		namcs.FieldYearOfVisit,
		namcs.FieldMonthOfBirth,
		namcs.FieldYearOfBirth,
	} {
		v, ok := fields.String(name)
		if !ok {
			return 0, fmt.Errorf("cannot compute age: %s missing", name)
		}
		parts[i] = v
	}

	visit, err := namcs.ParseMonthYear(parts[0], parts[1])
	if err != nil {
		return 0, err
	}
	birth, err := namcs.ParseMonthYear(parts[2], parts[3])
	if err != nil {
		return 0, err
	}
	if birth.After(visit) {
		birth = birth.AddDate(-100, 0, 0)
	}
	return float64(int(visit.Sub(birth).Hours() / 24)), nil
}

func patientVisitWeight(in Input) (any, error) {
	if in.Derived() {
		return nil, errRawRequired
	}
	w, err := strconv.ParseFloat(in.Raw[0], 64)
	if err != nil {
		return nil, fmt.Errorf("could not convert visit weight %s to float: %w", in.Raw[0], err)
	}
	return w, nil
}
