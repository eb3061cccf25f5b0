// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	service "github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/app"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit offers a screenshot submission to the pipeline.
	Submit(ctx context.Context, sub model.Submission) service.SubmitOutcome

	// Result returns the stored validation result for a submission.
	Result(ctx context.Context, submissionID string) (model.ValidationResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	resultsHandler     *ResultsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		submissionsHandler: NewSubmissionsHandler(deps),
		resultsHandler:     NewResultsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("/results/", MetricsMiddleware(s.resultsHandler.HandleGetResult, "results"))
}

// submissionRequest mirrors the schema for POST /submissions.
type submissionRequest struct {
	SubmissionID string `json:"submission_id"`
	OriginID     string `json:"origin_id"`
	UploaderID   string `json:"uploader_id"`
	ImageRef     string `json:"image_ref"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.OriginID) == "":
		return fmt.Errorf("%w: missing origin_id", ErrBadRequest)
	case strings.TrimSpace(s.UploaderID) == "":
		return fmt.Errorf("%w: missing uploader_id", ErrBadRequest)
	case strings.TrimSpace(s.ImageRef) == "":
		return fmt.Errorf("%w: missing image_ref", ErrBadRequest)
	}
	return nil
}

type ackResponse struct {
	Status       string `json:"status"`
	Duplicate    bool   `json:"duplicate"`
	SubmissionID string `json:"submission_id"`
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
