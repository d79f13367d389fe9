package store

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/rs/zerolog"
)

// SourceFileRun records one conversion of a source file. Run is the
// timestamp of the ahcd invocation, shared by the files it converted.
type SourceFileRun struct {
	ID            uint      `gorm:"primary_key" json:"id"`
	Run           string    `gorm:"index" json:"run"`
	SourceFileID  string    `gorm:"index" json:"source_file_ID"`
	Year          int       `json:"year"`
	Rows          int       `json:"rows"`
	FailedRows    int       `json:"failed_rows"`
	ConvertedFile string    `json:"converted_file"`
	ErrorFile     string    `json:"error_file,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

func (SourceFileRun) TableName() string {
	return "namcs_source_file_runs"
}

// RunLog keeps the history of conversion runs.
type RunLog struct {
	db  *gorm.DB
	log zerolog.Logger
}

// OpenRunLog connects to Postgres and migrates the run table.
func OpenRunLog(dsn string, log zerolog.Logger) (*RunLog, error) {
	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	rl, err := NewRunLog(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return rl, nil
}

// NewRunLog creates a RunLog on an open connection.
func NewRunLog(db *gorm.DB, log zerolog.Logger) (*RunLog, error) {
	if err := db.AutoMigrate(&SourceFileRun{}).Error; err != nil {
		return nil, fmt.Errorf("failed to migrate run log: %w", err)
	}
	return &RunLog{db: db, log: log}, nil
}

// Record stores a finished run.
func (rl *RunLog) Record(run *SourceFileRun) error {
	if err := rl.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run of %s: %w", run.SourceFileID, err)
	}
	rl.log.Debug().Str("sourceFile", run.SourceFileID).Uint("id", run.ID).Msg("Recorded run")
	return nil
}

// History returns the runs of year, most recent first.
func (rl *RunLog) History(year int) ([]SourceFileRun, error) {
	var runs []SourceFileRun
	if err := rl.db.Where("year = ?", year).Order("finished_at desc").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to read run history of %d: %w", year, err)
	}
	return runs, nil
}

// Close closes the connection.
func (rl *RunLog) Close() error {
	return rl.db.Close()
}
