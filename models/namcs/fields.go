package namcs

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names. The same names are used by every year layout, by the
// transforms and by the converted output.
const (
	FieldSourceFileID       = "source_file_ID"
	FieldSourceFileRow      = "source_file_row"
	FieldDateOfVisit        = "date_of_visit"
	FieldDateOfBirth        = "date_of_birth"
	FieldYearOfVisit        = "year_of_visit"
	FieldYearOfBirth        = "year_of_birth"
	FieldMonthOfVisit       = "month_of_visit"
	FieldMonthOfBirth       = "month_of_birth"
	FieldAge                = "age"
	FieldSex                = "sex"
	FieldPhysicianDiagnoses = "physician_diagnoses"
	FieldVisitWeight        = "patient_visit_weight"
)

// Error file columns.
const (
	ErrorFieldRecordNumber = "record_no"
	ErrorFieldException    = "exception"
	ErrorFieldRecord       = "record"
)

// Gender values produced from the raw sex code.
const (
	GenderFemale = "Female"
	GenderMale   = "Male"
)

// ConvertedFields is the ordered set of keys present in every converted record.
var ConvertedFields = []string{
	FieldSourceFileID,
	FieldSourceFileRow,
	FieldMonthOfVisit,
	FieldYearOfVisit,
	FieldSex,
	FieldAge,
	FieldPhysicianDiagnoses,
	FieldVisitWeight,
}

// ErrorFields is the header of an error file.
var ErrorFields = []string{
	ErrorFieldRecordNumber,
	ErrorFieldException,
	ErrorFieldRecord,
}

// SourceFileID returns the normalized dataset name for a year, e.g. "1973_NAMCS".
func SourceFileID(year int) string {
	return fmt.Sprintf("%d_NAMCS", year)
}

// YearFromSourceFileID extracts the year from "<year>_NAMCS".
func YearFromSourceFileID(id string) (int, error) {
	prefix, _, _ := strings.Cut(id, "_")
	year, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("invalid source file id %q: %w", id, err)
	}
	return year, nil
}
