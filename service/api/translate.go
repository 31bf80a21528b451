package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"mail_trans_engine/models/models"
	"mail_trans_engine/models/tables"
	"mail_trans_engine/pkg/translator"
)

func (s *Server) translateCreate(w http.ResponseWriter, r *http.Request) {
	var req models.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" || req.TargetLang == "" {
		respondError(w, http.StatusBadRequest, "text and target_lang are required")
		return
	}

	resp, err := s.app.Translator.Translate(r.Context(), req)
	if err != nil {
		s.respondTranslateError(w, err)
		return
	}
	respondOK(w, resp)
}

func (s *Server) translateRouted(w http.ResponseWriter, r *http.Request) {
	var req models.RoutedTranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" || req.TargetLang == "" {
		respondError(w, http.StatusBadRequest, "text and target_lang are required")
		return
	}

	resp, err := s.app.Translator.TranslateWithRouting(r.Context(), req)
	if err != nil {
		s.respondTranslateError(w, err)
		return
	}
	respondOK(w, resp)
}

// unitCreate persists a translation unit and queues it for the worker.
// The caller gets the unit id back immediately; results land on the unit
// row and the webhook.
func (s *Server) unitCreate(w http.ResponseWriter, r *http.Request) {
	var req models.UnitCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Body == "" || req.TargetLang == "" {
		respondError(w, http.StatusBadRequest, "body and target_lang are required")
		return
	}

	unitId, err := s.app.Units.Create(r.Context(), &tables.TranslationUnit{
		RecordId:   req.RecordId,
		TenantId:   req.TenantId,
		DocumentId: req.DocumentId,
		InReplyTo:  req.InReplyTo,
		Subject:    req.Subject,
		Body:       req.Body,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		s.app.Log.Error("unit create failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to create translation unit")
		return
	}

	if err := s.app.Enqueuer.TranslateUnit(r.Context(), unitId, false); err != nil {
		s.app.Log.Error("unit enqueue failed", "unit_id", unitId, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to queue translation unit")
		return
	}

	respondOK(w, models.UnitCreateResponse{UnitId: unitId})
}

// unitRetranslate queues a forced re-run of an existing unit, including
// one that already completed. The previous result is overwritten.
func (s *Server) unitRetranslate(w http.ResponseWriter, r *http.Request) {
	unitId := chi.URLParam(r, "id")

	unit, err := s.app.Units.Load(r.Context(), unitId)
	if err != nil {
		s.app.Log.Error("unit load failed", "unit_id", unitId, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to load translation unit")
		return
	}
	if unit == nil {
		respondError(w, http.StatusNotFound, "Translation unit not found")
		return
	}

	if err := s.app.Enqueuer.TranslateUnit(r.Context(), unitId, true); err != nil {
		s.app.Log.Error("unit enqueue failed", "unit_id", unitId, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to queue translation unit")
		return
	}

	respondOK(w, models.UnitCreateResponse{UnitId: unitId})
}

func (s *Server) respondTranslateError(w http.ResponseWriter, err error) {
	var failed *translator.FailedError
	if errors.As(err, &failed) {
		s.app.Log.Error("translation failed", "error", failed.Error())
		respondError(w, http.StatusBadGateway, failed.Error())
		return
	}
	s.app.Log.Error("translation request failed", "error", err.Error())
	respondError(w, http.StatusInternalServerError, "Translation failed")
}
