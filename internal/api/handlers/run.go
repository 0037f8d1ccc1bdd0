// GET /runs and GET /runs/{id} - run-history queries.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peterholko-pingidentity/action-agent/internal/domain/run"
)

type RunHandler struct {
	recorder *run.Recorder
}

func NewRunHandler(recorder *run.Recorder) *RunHandler {
	return &RunHandler{recorder: recorder}
}

type listRunsResponse struct {
	Runs   []*run.Run `json:"runs"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePaginationParams(r)
	runs, total, err := h.recorder.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, listRunsResponse{
		Runs:   runs,
		Total:  total,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
}

func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.recorder.Get(r.Context(), id)
	if errors.Is(err, run.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
