package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		// sentinels
		{"Y997", ""},
		{"Y998", ""},
		{"Y999", ""},
		{"0000", ""},
		{"00000", ""},
		{"100000", ""},
		{"209900", ""},
		{"209970", ""},
		{"900000", ""},
		{"209910", LeftBeforeBeingSeen},
		{"209920", TransferredElsewhere},
		{"209930", HMONotAuthorized},

		// numeric recode with "1" and "2" prefixes
		{"1381", "381."},
		{"138100", "381.00"},
		{"2010", "V10."},
		{"201081", "V10.81"},
		{"21234", "V12.34"},

		// supplementary classification prefixes
		{"Y123", "V12.3"},
		{"&123", "V12.3"},
		{"-123", "V12.3"},

		// inapplicable trailing digits
		{"7245-", "724.50"},
		{"381--", "381.00"},

		// blank slot marker since 2014
		{"-00009", ""},
		{"-0009", ""},

		// already character coded
		{"V700", "V70.0"},
		{"4011", "401.1"},
		{"0389", "038.9"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	for raw := range Sentinels {
		assert.Equal(t, Normalize(raw), Normalize(raw))
	}
	assert.Equal(t, Normalize("201081"), Normalize("201081"))
}
