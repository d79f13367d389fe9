package store

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v3"

	"github.com/SanteonNL/ahcd/models/namcs"
)

func TestVisitRowFromRecord(t *testing.T) {
	rec := namcs.NewRecord("1973_NAMCS", 4)
	rec[namcs.FieldMonthOfVisit] = "June"
	rec[namcs.FieldYearOfVisit] = "1973"
	rec[namcs.FieldSex] = "Male"
	rec[namcs.FieldAge] = 3650.0
	rec[namcs.FieldPhysicianDiagnoses] = []string{"381.", ""}
	rec[namcs.FieldVisitWeight] = 12.5

	row := VisitRowFromRecord(rec)
	assert.Equal(t, VisitRow{
		SourceFileID:       "1973_NAMCS",
		SourceFileRow:      4,
		MonthOfVisit:       null.StringFrom("June"),
		YearOfVisit:        null.StringFrom("1973"),
		Sex:                null.StringFrom("Male"),
		Age:                null.FloatFrom(3650),
		PhysicianDiagnoses: pq.StringArray{"381.", ""},
		PatientVisitWeight: null.FloatFrom(12.5),
	}, row)
}

func TestVisitRowFromPartialRecord(t *testing.T) {
	rec := namcs.NewRecord("1973_NAMCS", 2)
	rec[namcs.FieldMonthOfVisit] = "June"

	row := VisitRowFromRecord(rec)
	assert.True(t, row.MonthOfVisit.Valid)
	assert.False(t, row.Sex.Valid)
	assert.False(t, row.Age.Valid)
	assert.False(t, row.PatientVisitWeight.Valid)
	assert.Nil(t, row.PhysicianDiagnoses)
}

func TestBatches(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, batches(items, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, batches(items, 5))
	assert.Empty(t, batches([]int{}, 3))
}

func TestSourceFileRunTable(t *testing.T) {
	assert.Equal(t, "namcs_source_file_runs", SourceFileRun{}.TableName())
}
