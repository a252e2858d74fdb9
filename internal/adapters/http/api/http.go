// Package api declares the management HTTP contract over the record
// store: record entry and deletion, target get/set, and period
// summaries. Presentation (tables, charts) lives elsewhere; this layer
// only speaks JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/summary"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Records(ctx context.Context) ([]model.Record, error)
	SubmitCount(ctx context.Context, date, name string, typ model.RecordType, count int) error
	RemoveRecord(ctx context.Context, date, name string, typ model.RecordType) (bool, error)
	Target(ctx context.Context, period string, category model.Category) (int, error)
	SetTarget(ctx context.Context, period string, category model.Category, value int) error
	MonthlySummary(ctx context.Context, month string) (summary.Report, error)
	WeeklySummary(ctx context.Context, year, week int) (summary.Report, error)
}

// Server wires HTTP routes for the management API.
type Server struct {
	healthHandler  *HealthHandler
	recordsHandler *RecordsHandler
	targetHandler  *TargetHandler
	summaryHandler *SummaryHandler
}

// NewServer creates the API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		recordsHandler: NewRecordsHandler(deps),
		targetHandler:  NewTargetHandler(deps),
		summaryHandler: NewSummaryHandler(deps),
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", Instrument(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/records", Instrument(s.recordsHandler.HandleRecords, "records"))
	mux.HandleFunc("/target", Instrument(s.targetHandler.HandleTarget, "target"))
	mux.HandleFunc("/summary/monthly", Instrument(s.summaryHandler.HandleMonthly, "summary_monthly"))
	mux.HandleFunc("/summary/weekly", Instrument(s.summaryHandler.HandleWeekly, "summary_weekly"))
}

type statusResponse struct {
	Status string `json:"status"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

type targetResponse struct {
	Period   string         `json:"period"`
	Category model.Category `json:"category"`
	Target   int            `json:"target"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
