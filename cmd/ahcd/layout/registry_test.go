package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanteonNL/ahcd/models/namcs"
)

func TestFieldSpecRange(t *testing.T) {
	tests := []struct {
		name string
		spec FieldSpec
		want ByteRange
	}{
		{"single byte", FieldSpec{Offset: 9, Length: 1}, ByteRange{Start: 8, End: 9}},
		{"first byte", FieldSpec{Offset: 1, Length: 1}, ByteRange{Start: 0, End: 1}},
		{"two bytes", FieldSpec{Offset: 1, Length: 2}, ByteRange{Start: 0, End: 2}},
		{"weight", FieldSpec{Offset: 71, Length: 10}, ByteRange{Start: 70, End: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.spec.Range()
			assert.Equal(t, tt.want, got)
			if tt.spec.Length == 1 {
				assert.Equal(t, 1, got.End-got.Start)
				assert.Equal(t, tt.spec.Offset-1, got.Start)
			}
		})
	}
}

func TestByteRangeSlice(t *testing.T) {
	assert.Equal(t, "cd", ByteRange{Start: 2, End: 4}.Slice("abcdef"))
	assert.Equal(t, "ef", ByteRange{Start: 4, End: 10}.Slice("abcdef"))
	assert.Equal(t, "", ByteRange{Start: 8, End: 10}.Slice("abcdef"))
}

func TestDefaultRegistry(t *testing.T) {
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)

	years := reg.Years()
	assert.Equal(t, 1973, years[0])
	assert.Equal(t, 2015, years[len(years)-1])

	for _, year := range years {
		first, err := reg.GetByteRanges(year)
		require.NoError(t, err)
		second, err := reg.GetByteRanges(year)
		require.NoError(t, err)
		assert.Equal(t, first, second, "year %d", year)

		diag, ok := first.Lookup(namcs.FieldPhysicianDiagnoses)
		require.True(t, ok, "year %d", year)
		assert.True(t, diag.Multi)
		if year >= 2014 {
			assert.Len(t, diag.Ranges, 5, "year %d", year)
		} else {
			assert.Len(t, diag.Ranges, 3, "year %d", year)
		}
	}
}

func TestGetByteRanges1973(t *testing.T) {
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)

	l, err := reg.GetByteRanges(1973)
	require.NoError(t, err)

	assert.Equal(t, []string{
		namcs.FieldMonthOfVisit,
		namcs.FieldYearOfVisit,
		namcs.FieldMonthOfBirth,
		namcs.FieldYearOfBirth,
		namcs.FieldSex,
		namcs.FieldPhysicianDiagnoses,
		namcs.FieldVisitWeight,
	}, l.Names())

	sex, _ := l.Lookup(namcs.FieldSex)
	assert.Equal(t, []ByteRange{{Start: 8, End: 9}}, sex.Ranges)

	diag, _ := l.Lookup(namcs.FieldPhysicianDiagnoses)
	assert.Equal(t, []ByteRange{{38, 42}, {42, 46}, {46, 50}}, diag.Ranges)
}

func TestGetByteRangesReturnsCopy(t *testing.T) {
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)

	l, err := reg.GetByteRanges(1973)
	require.NoError(t, err)
	l[0].Ranges[0] = ByteRange{Start: 100, End: 200}

	again, err := reg.GetByteRanges(1973)
	require.NoError(t, err)
	assert.Equal(t, ByteRange{Start: 0, End: 2}, again[0].Ranges[0])
}

func TestGetByteRangesUnknownYear(t *testing.T) {
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)

	_, err = reg.GetByteRanges(1974)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaNotFound))

	var notFound *SchemaNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 1974, notFound.Year)
}

func TestDeriveOverridesBase(t *testing.T) {
	reg, err := NewDefaultRegistry()
	require.NoError(t, err)

	l, err := reg.GetByteRanges(1975)
	require.NoError(t, err)
	w, ok := l.Lookup(namcs.FieldVisitWeight)
	require.True(t, ok)
	assert.Equal(t, []ByteRange{{Start: 77, End: 87}}, w.Ranges)

	l, err = reg.GetByteRanges(1976)
	require.NoError(t, err)
	w, _ = l.Lookup(namcs.FieldVisitWeight)
	assert.Equal(t, []ByteRange{{Start: 77, End: 87}}, w.Ranges)

	base, err := reg.GetByteRanges(1973)
	require.NoError(t, err)
	w, _ = base.Lookup(namcs.FieldVisitWeight)
	assert.Equal(t, []ByteRange{{Start: 70, End: 80}}, w.Ranges)
}

func TestResolveFirstWriterWins(t *testing.T) {
	s := YearSchema{
		Year: 1,
		Entries: []Entry{
			Field("a", 1, 2),
			Field("a", 5, 2),
		},
	}
	l := resolve(s)
	require.Len(t, l, 1)
	assert.Equal(t, []ByteRange{{Start: 0, End: 2}}, l[0].Ranges)
}

func TestResolveMultiSlotReplacesSingle(t *testing.T) {
	s := YearSchema{
		Year: 1,
		Entries: []Entry{
			Field("d", 1, 2),
			Field("x", 3, 1),
			Slots(FieldSpec{Name: "d", Offset: 10, Length: 4}, FieldSpec{Name: "d", Offset: 14, Length: 4}),
			Field("d", 30, 2),
		},
	}
	l := resolve(s)
	assert.Equal(t, []string{"x", "d"}, l.Names())
	d, _ := l.Lookup("d")
	assert.True(t, d.Multi)
	assert.Equal(t, []ByteRange{{9, 13}, {13, 17}}, d.Ranges)
}

func TestValidate(t *testing.T) {
	valid := year1973
	assert.NoError(t, Validate(valid))

	missing := YearSchema{Year: 1, Entries: []Entry{Field(namcs.FieldMonthOfVisit, 1, 2)}}
	err := Validate(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSchema)

	bad := Derive(year1973, 2, Field(namcs.FieldSex, 0, 1))
	assert.ErrorIs(t, Validate(bad), ErrInvalidSchema)
}

func TestNewRegistryRejectsDuplicateYear(t *testing.T) {
	_, err := NewRegistry(year1973, year1973)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}
