package namcs

// Record maps canonical field names to normalized values. Values are strings,
// float64, int (source_file_row), []string (diagnosis slots) or [2]string
// (decoded mmyy dates).
type Record map[string]any

// NewRecord creates a record carrying the two bookkeeping fields.
func NewRecord(sourceFileID string, row int) Record {
	return Record{
		FieldSourceFileID:  sourceFileID,
		FieldSourceFileRow: row,
	}
}

// SourceFileID returns the source file identifier or "" when absent.
func (r Record) SourceFileID() string {
	id, _ := r[FieldSourceFileID].(string)
	return id
}

// Row returns the 1-based row number or 0 when absent.
func (r Record) Row() int {
	row, _ := r[FieldSourceFileRow].(int)
	return row
}

// String returns the value of a string field.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field].(string)
	return v, ok
}

// Float returns the value of a float field.
func (r Record) Float(field string) (float64, bool) {
	v, ok := r[field].(float64)
	return v, ok
}

// Strings returns the value of a list field.
func (r Record) Strings(field string) ([]string, bool) {
	v, ok := r[field].([]string)
	return v, ok
}

// Project removes every key that is not in fields.
func (r Record) Project(fields []string) {
	keep := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		keep[f] = struct{}{}
	}
	for k := range r {
		if _, ok := keep[k]; !ok {
			delete(r, k)
		}
	}
}

// Clone returns a shallow copy; list values are copied.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// ErrorEntry describes one record that failed to decode or normalize.
type ErrorEntry struct {
	RecordNumber int    `json:"record_no"`
	Record       string `json:"record"`
	Exception    string `json:"exception"`
}
