package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/repository"
)

// ResultsHandler serves stored validation results.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleGetResult handles GET /results/{submission_id} requests.
func (h *ResultsHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	submissionID := strings.TrimPrefix(r.URL.Path, "/results/")
	if submissionID == "" || strings.Contains(submissionID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing submission id"))
		return
	}

	result, err := h.deps.Result(r.Context(), submissionID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
