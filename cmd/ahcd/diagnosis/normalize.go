// Package diagnosis converts the physician diagnosis codes of the NAMCS public
// use files into dotted ICD-9-CM codes.
//
// Over the years the survey used several encodings: a "Y" (1973-74), "&"
// (1975-76) or "-" (1977-78) prefix for the supplementary classification, and
// from 1979 on a numeric recode where a leading "1" marks diagnoses 001-999
// and a leading "2" marks V codes.
package diagnosis

import (
	"regexp"
	"strings"
)

// Categories of the sentinel codes.
const (
	Blank                = "Blank"
	BlankDiagnosis       = "Blank diagnosis"
	DiagnosisOfNone      = "Diagnosis of 'none'"
	Noncodable           = "Noncodable"
	NoncodableDiagnosis  = "Noncodable diagnosis"
	IllegibleDiagnosis   = "Illegible diagnosis"
	LeftBeforeBeingSeen  = "Left before being seen"
	TransferredElsewhere = "Transferred to another facility"
	HMONotAuthorized     = "HMO will not authorize treatment"
)

// Sentinels maps raw codes with a fixed meaning to their category.
var Sentinels = map[string]string{
	"Y997":   DiagnosisOfNone,
	"Y998":   NoncodableDiagnosis,
	"Y999":   IllegibleDiagnosis,
	"0000":   BlankDiagnosis,
	"00000":  BlankDiagnosis,
	"100000": BlankDiagnosis,
	"209900": Noncodable,
	"209910": LeftBeforeBeingSeen,
	"209920": TransferredElsewhere,
	"209930": HMONotAuthorized,
	"209970": DiagnosisOfNone,
	"900000": Blank,
}

// empty lists the categories that normalize to "".
var empty = map[string]bool{
	Blank:               true,
	BlankDiagnosis:      true,
	DiagnosisOfNone:     true,
	Noncodable:          true,
	NoncodableDiagnosis: true,
	IllegibleDiagnosis:  true,
}

// blankDash is the right-justified "-9" used for an unused slot since 2014.
var blankDash = regexp.MustCompile(`^-0*9$`)

// Normalize returns the dotted ICD-9 code of raw, "" for blank and
// uncodable entries, or the category name for the remaining sentinels.
func Normalize(raw string) string {
	if category, ok := Sentinels[raw]; ok {
		if empty[category] {
			return ""
		}
		return category
	}

	code := raw
	switch {
	case len(code) <= 4 && hasSupplementaryPrefix(code):
		code = "V" + code[1:]
	case len(code) > 3 && strings.Contains(code[3:], "-"):
		// trailing dashes mark digits that do not apply
		code = strings.ReplaceAll(code, "-", "0")
	case blankDash.MatchString(code):
		return ""
	}

	switch {
	case strings.HasPrefix(code, "1"):
		code = code[1:]
	case strings.HasPrefix(code, "20"):
		code = "V" + code[2:]
	case strings.HasPrefix(code, "2"):
		code = "V" + code[1:]
	}

	if len(code) < 3 {
		return code + "."
	}
	return code[:3] + "." + code[3:]
}

func hasSupplementaryPrefix(code string) bool {
	return strings.HasPrefix(code, "&") ||
		strings.HasPrefix(code, "-") ||
		strings.HasPrefix(code, "Y")
}
