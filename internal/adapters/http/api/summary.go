package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// SummaryHandler serves the aggregated period reports.
type SummaryHandler struct {
	deps Dependencies
}

// NewSummaryHandler creates a summary handler.
func NewSummaryHandler(deps Dependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleMonthly serves GET /summary/monthly?month=YYYY-MM.
func (h *SummaryHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	const op = "api.monthly_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	month := r.URL.Query().Get("month")
	if !monthPattern.MatchString(month) {
		writeError(w, http.StatusBadRequest, "bad_request",
			NewKind(op, errors.New("month must be YYYY-MM")))
		return
	}
	rep, err := h.deps.MonthlySummary(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleWeekly serves GET /summary/weekly?year=YYYY&week=N.
func (h *SummaryHandler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	const op = "api.weekly_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	year, yerr := strconv.Atoi(r.URL.Query().Get("year"))
	week, werr := strconv.Atoi(r.URL.Query().Get("week"))
	if yerr != nil || werr != nil || year < 1 || week < 1 || week > 53 {
		writeError(w, http.StatusBadRequest, "bad_request",
			NewKind(op, errors.New("year and week (1-53) are required")))
		return
	}
	rep, err := h.deps.WeeklySummary(r.Context(), year, week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
