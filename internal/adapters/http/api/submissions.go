package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	service "github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/app"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/google/uuid"
)

// SubmissionsHandler handles screenshot submission requests.
type SubmissionsHandler struct {
	deps Dependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps Dependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// HandlePostSubmission handles POST /submissions requests.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.SubmissionID == "" {
		req.SubmissionID = uuid.NewString()
	}

	sub := model.Submission{
		ID:          req.SubmissionID,
		OriginID:    req.OriginID,
		UploaderID:  req.UploaderID,
		ImageRef:    req.ImageRef,
		ArrivalTime: time.Now(),
		State:       model.StatePending,
	}

	switch h.deps.Submit(r.Context(), sub) {
	case service.SubmitAccepted:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", SubmissionID: sub.ID})
	case service.SubmitDuplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, SubmissionID: sub.ID})
	case service.SubmitBackpressure:
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
	default:
		writeError(w, http.StatusServiceUnavailable, "unavailable", nil)
	}
}
