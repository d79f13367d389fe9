package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gopkg.in/guregu/null.v3"

	"github.com/SanteonNL/ahcd/models/namcs"
)

// insertBatchSize keeps a bulk insert below the Postgres bind parameter limit.
const insertBatchSize = 1000

const createVisitsTable = `
CREATE TABLE IF NOT EXISTS namcs_visits (
	source_file_id       TEXT    NOT NULL,
	source_file_row      INTEGER NOT NULL,
	month_of_visit       TEXT,
	year_of_visit        TEXT,
	sex                  TEXT,
	age                  DOUBLE PRECISION,
	physician_diagnoses  TEXT[],
	patient_visit_weight DOUBLE PRECISION,
	PRIMARY KEY (source_file_id, source_file_row)
)`

const insertVisit = `
INSERT INTO namcs_visits (
	source_file_id, source_file_row, month_of_visit, year_of_visit,
	sex, age, physician_diagnoses, patient_visit_weight
) VALUES (
	:source_file_id, :source_file_row, :month_of_visit, :year_of_visit,
	:sex, :age, :physician_diagnoses, :patient_visit_weight
)`

// VisitRow is one converted record as stored in namcs_visits. Fields that
// failed to normalize are NULL.
type VisitRow struct {
	SourceFileID       string         `db:"source_file_id"`
	SourceFileRow      int            `db:"source_file_row"`
	MonthOfVisit       null.String    `db:"month_of_visit"`
	YearOfVisit        null.String    `db:"year_of_visit"`
	Sex                null.String    `db:"sex"`
	Age                null.Float     `db:"age"`
	PhysicianDiagnoses pq.StringArray `db:"physician_diagnoses"`
	PatientVisitWeight null.Float     `db:"patient_visit_weight"`
}

// VisitRowFromRecord maps a canonical record onto a table row.
func VisitRowFromRecord(rec namcs.Record) VisitRow {
	row := VisitRow{
		SourceFileID:       rec.SourceFileID(),
		SourceFileRow:      rec.Row(),
		MonthOfVisit:       null.NewString(rec.String(namcs.FieldMonthOfVisit)),
		YearOfVisit:        null.NewString(rec.String(namcs.FieldYearOfVisit)),
		Sex:                null.NewString(rec.String(namcs.FieldSex)),
		Age:                null.NewFloat(rec.Float(namcs.FieldAge)),
		PatientVisitWeight: null.NewFloat(rec.Float(namcs.FieldVisitWeight)),
	}
	if diags, ok := rec.Strings(namcs.FieldPhysicianDiagnoses); ok {
		row.PhysicianDiagnoses = pq.StringArray(diags)
	}
	return row
}

// VisitStore writes converted records to Postgres.
type VisitStore struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewVisitStore creates a new VisitStore
func NewVisitStore(db *sqlx.DB, log zerolog.Logger) *VisitStore {
	return &VisitStore{db: db, log: log}
}

// Connect opens a Postgres connection for dsn.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the visits table when it does not exist.
func (vs *VisitStore) EnsureSchema(ctx context.Context) error {
	if _, err := vs.db.ExecContext(ctx, createVisitsTable); err != nil {
		return fmt.Errorf("failed to create namcs_visits: %w", err)
	}
	return nil
}

// ReplaceSourceFile stores the records of one source file, replacing the rows
// of an earlier run of the same file.
func (vs *VisitStore) ReplaceSourceFile(ctx context.Context, sourceFileID string, records []namcs.Record) error {
	tx, err := vs.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM namcs_visits WHERE source_file_id = $1", sourceFileID); err != nil {
		return fmt.Errorf("failed to delete rows of %s: %w", sourceFileID, err)
	}

	rows := make([]VisitRow, len(records))
	for i, rec := range records {
		rows[i] = VisitRowFromRecord(rec)
	}
	for _, batch := range batches(rows, insertBatchSize) {
		if _, err := tx.NamedExecContext(ctx, insertVisit, batch); err != nil {
			return fmt.Errorf("failed to insert rows of %s: %w", sourceFileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows of %s: %w", sourceFileID, err)
	}
	vs.log.Info().Str("sourceFile", sourceFileID).Int("rows", len(rows)).Msg("Stored visits")
	return nil
}

// CountVisits returns the number of stored rows of a source file.
func (vs *VisitStore) CountVisits(ctx context.Context, sourceFileID string) (int, error) {
	var n int
	if err := vs.db.GetContext(ctx, &n, "SELECT count(*) FROM namcs_visits WHERE source_file_id = $1", sourceFileID); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", sourceFileID, err)
	}
	return n, nil
}

func batches[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
