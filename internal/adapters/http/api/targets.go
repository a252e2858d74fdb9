package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// TargetHandler serves the single-target resource keyed by
// (period, category).
type TargetHandler struct {
	deps Dependencies
}

// NewTargetHandler creates a target handler.
func NewTargetHandler(deps Dependencies) *TargetHandler {
	return &TargetHandler{deps: deps}
}

// targetRequest mirrors the JSON body of PUT /target.
type targetRequest struct {
	Period   string `json:"period"`
	Category string `json:"category"`
	Target   int    `json:"target"`
}

// HandleTarget dispatches on method: GET reads, PUT replaces.
func (h *TargetHandler) HandleTarget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *TargetHandler) get(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_target"
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	category := model.Category(strings.TrimSpace(r.URL.Query().Get("category")))
	if period == "" || !category.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request",
			NewKind(op, errors.New("period and a valid category are required")))
		return
	}
	value, err := h.deps.Target(r.Context(), period, category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, targetResponse{Period: period, Category: category, Target: value})
}

func (h *TargetHandler) put(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_target"
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetTarget(r.Context(), req.Period, model.Category(req.Category), req.Target); err != nil {
		if errors.Is(err, model.ErrInvalidTarget) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
