package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"mail_trans_engine/models/models"
	"mail_trans_engine/pkg/batch"
)

func (s *Server) batchSubmit(w http.ResponseWriter, r *http.Request) {
	var req models.BatchSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Units) == 0 {
		respondError(w, http.StatusBadRequest, "units are required")
		return
	}
	for _, unit := range req.Units {
		if unit.Text == "" || unit.TargetLang == "" {
			respondError(w, http.StatusBadRequest, "every unit needs text and target_lang")
			return
		}
	}

	jobId, err := s.app.Batch.Submit(r.Context(), req.Units)
	if err != nil {
		s.app.Log.Error("batch submit failed", "error", err.Error())
		respondError(w, http.StatusBadGateway, "Batch submission failed")
		return
	}

	respondOK(w, models.BatchSubmitResponse{JobId: jobId})
}

func (s *Server) batchStatus(w http.ResponseWriter, r *http.Request) {
	jobId := chi.URLParam(r, "id")

	status, err := s.app.Batch.Poll(r.Context(), jobId)
	if err != nil {
		if errors.Is(err, batch.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "Batch job not found")
			return
		}
		s.app.Log.Error("batch poll failed", "job_id", jobId, "error", err.Error())
		respondError(w, http.StatusBadGateway, "Batch status check failed")
		return
	}

	respondOK(w, status)
}

func (s *Server) batchHarvest(w http.ResponseWriter, r *http.Request) {
	jobId := chi.URLParam(r, "id")

	items, err := s.app.Batch.Harvest(r.Context(), jobId)
	if err != nil {
		if errors.Is(err, batch.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "Batch job not found")
			return
		}
		s.app.Log.Error("batch harvest failed", "job_id", jobId, "error", err.Error())
		respondError(w, http.StatusConflict, "Batch output not available")
		return
	}

	respondOK(w, items)
}
