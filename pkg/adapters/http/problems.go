package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/panel"
	"github.com/aretw0/pkiviz/pkg/session"
	"github.com/moogar0880/problems"
)

const problemContentType = "application/problem+json"

func writeProblem(w http.ResponseWriter, p *problems.Problem) {
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, problems.NewStatusProblem(http.StatusBadRequest).
		WithInstance(r.URL.Path).
		WithType("validation_error").
		WithDetail(detail))
}

// handleError maps viewer and catalog errors onto RFC 7807 problems.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		status int
		kind   string
	)
	switch {
	case errors.Is(err, domain.ErrNodeNotFound):
		status, kind = http.StatusNotFound, "node_not_found"
	case errors.Is(err, domain.ErrFlowNotFound):
		status, kind = http.StatusNotFound, "flow_not_found"
	case errors.Is(err, domain.ErrCommandNotFound):
		status, kind = http.StatusNotFound, "command_not_found"
	case errors.Is(err, session.ErrInvalidSize):
		status, kind = http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrNotBeginnerMode), errors.Is(err, domain.ErrEmptyFlow):
		status, kind = http.StatusConflict, "not_beginner_mode"
	case errors.Is(err, panel.ErrNoExampleOutput):
		status, kind = http.StatusConflict, "no_example_output"
	case errors.Is(err, session.ErrDragDisabled):
		status, kind = http.StatusConflict, "drag_disabled"
	case errors.Is(err, session.ErrViewerClosed):
		status, kind = http.StatusServiceUnavailable, "viewer_closed"
	default:
		logger.Error("Request failed", "path", r.URL.Path, "error", err)
		writeProblem(w, problems.NewStatusProblem(http.StatusInternalServerError).
			WithInstance(r.URL.Path).
			WithType("internal_error").
			WithError(err))
		return
	}
	writeProblem(w, problems.NewStatusProblem(status).
		WithInstance(r.URL.Path).
		WithType(kind).
		WithDetail(err.Error()))
}
