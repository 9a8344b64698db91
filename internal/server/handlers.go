package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Bergam0t/ciw-example-animation/internal/animate"
	"github.com/Bergam0t/ciw-example-animation/internal/citation"
	"github.com/Bergam0t/ciw-example-animation/internal/eventlog"
	"github.com/Bergam0t/ciw-example-animation/internal/model"
	"github.com/Bergam0t/ciw-example-animation/internal/results"
	"github.com/Bergam0t/ciw-example-animation/internal/storage"
)

// createRunRequest is the POST /runs body. Absent fields fall back to
// the configured defaults.
type createRunRequest struct {
	NOperators     *int     `json:"n_operators"`
	NNurses        *int     `json:"n_nurses"`
	ChanceCallback *float64 `json:"chance_callback"`
	Replications   *int     `json:"replications"`
}

// runResponse is the representation of a run with its summary table.
type runResponse struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Experiment model.Experiment  `json:"experiment"`
	Reps       int               `json:"reps"`
	Summary    []results.Summary `json:"summary,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encoding response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, format string, args ...any) {
	s.writeJSON(w, code, errorResponse{Error: fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "decoding request: %v", err)
		return
	}

	exp := s.cfg.Experiment
	if req.NOperators != nil {
		exp.NOperators = *req.NOperators
	}
	if req.NNurses != nil {
		exp.NNurses = *req.NNurses
	}
	if req.ChanceCallback != nil {
		exp.ChanceCallback = *req.ChanceCallback
	}
	reps := s.cfg.Replications
	if req.Replications != nil {
		reps = *req.Replications
	}
	if reps < 1 {
		s.writeError(w, http.StatusUnprocessableEntity, "set number of replications to 1 or above")
		return
	}
	if err := exp.Validate(); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid experiment: %v", err)
		return
	}

	start := time.Now()
	repl, err := model.MultipleReplications(r.Context(), exp, reps, s.baseSeed)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "running simulation: %v", err)
		return
	}
	s.simulationsTotal.Inc()
	s.replicationsTotal.Add(float64(reps))
	s.simulationDuration.Observe(time.Since(start).Seconds())

	log, err := eventlog.FromRecords(repl.Records[0], model.NodeNames)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "building event log: %v", err)
		return
	}

	run := storage.Run{
		ID:         storage.NewRunID(),
		CreatedAt:  time.Now().UTC(),
		Experiment: exp,
		Reps:       reps,
		Metrics:    repl.Metrics,
	}
	if err := s.store.SaveRun(run, log); err != nil {
		s.writeError(w, http.StatusInternalServerError, "saving run: %v", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, runResponse{
		ID:         run.ID,
		CreatedAt:  run.CreatedAt,
		Experiment: exp,
		Reps:       reps,
		Summary:    results.Describe(repl.Metrics),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "listing runs: %v", err)
		return
	}

	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runResponse{
			ID:         run.ID,
			CreatedAt:  run.CreatedAt,
			Experiment: run.Experiment,
			Reps:       run.Reps,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "run %s not found", id)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "reading run: %v", err)
		return
	}

	s.writeJSON(w, http.StatusOK, runResponse{
		ID:         run.ID,
		CreatedAt:  run.CreatedAt,
		Experiment: run.Experiment,
		Reps:       run.Reps,
		Summary:    results.Describe(run.Metrics),
	})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.DeleteRun(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "run %s not found", id)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "deleting run: %v", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleAnimation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "run %s not found", id)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "reading run: %v", err)
		return
	}

	log, err := s.store.GetRunLog(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "run %s has no event log", id)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "reading event log: %v", err)
		return
	}

	stages := animate.CallCentreStages(run.Experiment.NOperators, run.Experiment.NNurses)
	opts := animate.DefaultOptions()
	opts.LimitDuration = model.ResultsCollectionPeriod

	snaps, err := animate.BuildSnapshots(log, stages, opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "building animation: %v", err)
		return
	}
	html, err := animate.GenerateHTML(snaps, stages, opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "rendering animation: %v", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(html)); err != nil {
		s.log.Error().Err(err).Msg("writing animation")
	}
}

func (s *Server) handleCitation(w http.ResponseWriter, r *http.Request) {
	if s.citation == nil {
		s.writeError(w, http.StatusNotFound, "no citation file configured")
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.writeJSON(w, http.StatusOK, s.citation)
	case "bibtex":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, citation.ToBibTeX(s.citation))
	case "apa":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, citation.ToAPA(s.citation))
	default:
		s.writeError(w, http.StatusBadRequest, "unknown format %q (want json, bibtex or apa)", format)
	}
}
