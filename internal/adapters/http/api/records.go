package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// RecordsHandler serves the records collection: list, upsert, delete.
type RecordsHandler struct {
	deps Dependencies
}

// NewRecordsHandler creates a records handler.
func NewRecordsHandler(deps Dependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// recordRequest mirrors the JSON body of POST and DELETE /records.
type recordRequest struct {
	Date  string `json:"date"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func (r recordRequest) validateKey() error {
	switch {
	case strings.TrimSpace(r.Date) == "":
		return errors.New("missing date")
	case strings.TrimSpace(r.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(r.Type) == "":
		return errors.New("missing type")
	}
	if !model.RecordType(r.Type).Valid() {
		return errors.New("type must be one of new, exist, line, survey")
	}
	return nil
}

// HandleRecords dispatches on method: GET lists, POST upserts
// (additive), DELETE removes by key.
func (h *RecordsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.upsert(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *RecordsHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_records"
	records, err := h.deps.Records(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RecordsHandler) upsert(w http.ResponseWriter, r *http.Request) {
	const op = "api.upsert_record"
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validateKey(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Count < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, errors.New("count must not be negative")))
		return
	}
	if err := h.deps.SubmitCount(r.Context(), req.Date, req.Name, model.RecordType(req.Type), req.Count); err != nil {
		if errors.Is(err, model.ErrInvalidRecord) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *RecordsHandler) remove(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_record"
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validateKey(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	deleted, err := h.deps.RemoveRecord(r.Context(), req.Date, req.Name, model.RecordType(req.Type))
	if err != nil {
		if errors.Is(err, model.ErrInvalidRecord) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, deleteResponse{Deleted: false})
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: true})
}
