package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/layout"
	"github.com/SanteonNL/ahcd/cmd/ahcd/pipeline"
	"github.com/SanteonNL/ahcd/cmd/ahcd/store"
	"github.com/SanteonNL/ahcd/models/namcs"
)

// maxBodyBytes limits the raw records posted in one request.
const maxBodyBytes = 32 << 20

// RunHistory returns the recorded conversion runs of a year.
type RunHistory interface {
	History(year int) ([]store.SourceFileRun, error)
}

// NAMCSRouter serves the year layouts and decodes posted raw records.
type NAMCSRouter struct {
	layouts   *layout.Registry
	processor *pipeline.Processor
	runs      RunHistory
	log       zerolog.Logger
}

// YearsResponse lists the years with a record layout.
type YearsResponse struct {
	Years []int `json:"years"`
}

// LayoutResponse is the resolved layout of a year.
type LayoutResponse struct {
	Year   int           `json:"year"`
	Fields layout.Layout `json:"fields"`
}

// RecordsResponse holds the decoded records of a request, one per posted
// line, and the failures among them.
type RecordsResponse struct {
	SourceFileID string             `json:"source_file_ID"`
	Records      []namcs.Record     `json:"records"`
	Errors       []namcs.ErrorEntry `json:"errors"`
}

// RunsResponse lists the conversion runs of a year, most recent first.
type RunsResponse struct {
	Year int                   `json:"year"`
	Runs []store.SourceFileRun `json:"runs"`
}

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewNAMCSRouter creates a new NAMCSRouter. The processor should not carry an
// error sink; failures are returned in the response. runs may be nil when no
// database is configured.
func NewNAMCSRouter(layouts *layout.Registry, processor *pipeline.Processor, runs RunHistory, log zerolog.Logger) *NAMCSRouter {
	return &NAMCSRouter{
		layouts:   layouts,
		processor: processor,
		runs:      runs,
		log:       log,
	}
}

func (nr *NAMCSRouter) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(nr.logRequests)

	r.HandleFunc("/years", nr.handleYears).Methods(http.MethodGet)
	r.HandleFunc("/years/{year:[0-9]{4}}/layout", nr.handleLayout).Methods(http.MethodGet)
	r.HandleFunc("/years/{year:[0-9]{4}}/records", nr.handleRecords).Methods(http.MethodPost)
	r.HandleFunc("/years/{year:[0-9]{4}}/runs", nr.handleRuns).Methods(http.MethodGet)

	return r
}

func (nr *NAMCSRouter) handleYears(w http.ResponseWriter, r *http.Request) {
	nr.respond(w, http.StatusOK, YearsResponse{Years: nr.layouts.Years()})
}

func (nr *NAMCSRouter) handleLayout(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(mux.Vars(r)["year"])

	l, err := nr.layouts.GetByteRanges(year)
	if err != nil {
		nr.respondError(w, err)
		return
	}
	nr.respond(w, http.StatusOK, LayoutResponse{Year: year, Fields: l})
}

func (nr *NAMCSRouter) handleRecords(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(mux.Vars(r)["year"])
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	records, errs, err := nr.processor.ProcessAll(year, io.NopCloser(body))
	if err != nil {
		nr.respondError(w, err)
		return
	}
	if records == nil {
		records = []namcs.Record{}
	}
	if errs == nil {
		errs = []namcs.ErrorEntry{}
	}

	nr.respond(w, http.StatusOK, RecordsResponse{
		SourceFileID: namcs.SourceFileID(year),
		Records:      records,
		Errors:       errs,
	})
}

func (nr *NAMCSRouter) handleRuns(w http.ResponseWriter, r *http.Request) {
	if nr.runs == nil {
		nr.respond(w, http.StatusServiceUnavailable, ErrorResponse{Error: "run history needs a database"})
		return
	}
	year, _ := strconv.Atoi(mux.Vars(r)["year"])

	runs, err := nr.runs.History(year)
	if err != nil {
		nr.respondError(w, err)
		return
	}
	if runs == nil {
		runs = []store.SourceFileRun{}
	}
	nr.respond(w, http.StatusOK, RunsResponse{Year: year, Runs: runs})
}

func (nr *NAMCSRouter) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, layout.ErrSchemaNotFound):
		status = http.StatusNotFound
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	}
	nr.respond(w, status, ErrorResponse{Error: err.Error()})
}

func (nr *NAMCSRouter) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		nr.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (nr *NAMCSRouter) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		nr.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}
