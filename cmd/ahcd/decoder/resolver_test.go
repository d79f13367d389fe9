package decoder

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/SanteonNL/ahcd/cmd/ahcd/transform"
	"github.com/SanteonNL/ahcd/models/namcs"
)

func TestResolveComputesAge(t *testing.T) {
	dec, res, l := newServices(t)

	rec := namcs.NewRecord("1973_NAMCS", 1)
	require.NoError(t, dec.Decode(line1973(), l, rec))
	require.NoError(t, res.Resolve(rec))
	res.Project(rec)

	assert.Equal(t, 23042.0, rec[namcs.FieldAge])
	assert.Len(t, rec, len(namcs.ConvertedFields))
	for field := range rec {
		assert.True(t, slices.Contains(namcs.ConvertedFields, field), field)
	}
}

func TestResolveKeepsDecodedFields(t *testing.T) {
	_, res, _ := newServices(t)

	rec := namcs.NewRecord("1980_NAMCS", 3)
	rec[namcs.FieldMonthOfVisit] = "March"
	rec[namcs.FieldYearOfVisit] = "1980"
	rec[namcs.FieldSex] = "Male"
	rec[namcs.FieldAge] = 7300.0
	rec[namcs.FieldPhysicianDiagnoses] = []string{"250.00"}
	rec[namcs.FieldVisitWeight] = 1.5

	before := rec.Clone()
	require.NoError(t, res.Resolve(rec))
	assert.Equal(t, before, rec)
}

func TestResolveYearOfVisitFromSourceFile(t *testing.T) {
	_, res, _ := newServices(t)

	rec := namcs.NewRecord("2012_NAMCS", 1)
	rec[namcs.FieldMonthOfVisit] = "March"
	rec[namcs.FieldSex] = "Male"
	rec[namcs.FieldAge] = 7300.0
	rec[namcs.FieldPhysicianDiagnoses] = []string{"250.00"}
	rec[namcs.FieldVisitWeight] = 1.5

	require.NoError(t, res.Resolve(rec))
	assert.Equal(t, "2012", rec[namcs.FieldYearOfVisit])
}

func TestResolveCollectsFailures(t *testing.T) {
	transforms := transform.NewRegistry()
	res := NewResolverService(transforms, zerolog.Nop())

	rec := namcs.NewRecord("1973_NAMCS", 1)
	err := res.Resolve(rec)
	require.Error(t, err)

	var missing *MissingTransformError
	require.ErrorAs(t, err, &missing)
	assert.ErrorIs(t, err, ErrMissingTransform)
	for _, field := range []string{namcs.FieldMonthOfVisit, namcs.FieldAge, namcs.FieldVisitWeight} {
		assert.Contains(t, err.Error(), field)
		assert.NotContains(t, rec, field)
	}
}

func TestResolvePartialFailure(t *testing.T) {
	_, res, _ := newServices(t)

	rec := namcs.NewRecord("1973_NAMCS", 1)
	rec[namcs.FieldMonthOfVisit] = "June"
	rec[namcs.FieldSex] = "Male"
	rec[namcs.FieldPhysicianDiagnoses] = []string{}
	rec[namcs.FieldVisitWeight] = 1.0

	err := res.Resolve(rec)
	require.Error(t, err)
	assert.Equal(t, "1973", rec[namcs.FieldYearOfVisit])
	assert.NotContains(t, rec, namcs.FieldAge)
}
