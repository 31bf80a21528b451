package api

import (
	"net/http"

	"github.com/go-chi/chi"
)

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.Cache.Stats(r.Context())
	if err != nil {
		s.app.Log.Error("cache stats failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to read cache stats")
		return
	}
	respondOK(w, stats)
}

func (s *Server) cacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Cache.Clear(r.Context()); err != nil {
		s.app.Log.Error("cache clear failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}
	s.app.Log.Info("translation cache cleared")
	respondOK(w, map[string]interface{}{})
}

func (s *Server) usageReport(w http.ResponseWriter, r *http.Request) {
	reports, err := s.app.Usage.Report(r.Context(), r.URL.Query().Get("engine"))
	if err != nil {
		s.app.Log.Error("usage report failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to read usage")
		return
	}
	respondOK(w, reports)
}

func (s *Server) usageHistory(w http.ResponseWriter, r *http.Request) {
	engine := r.URL.Query().Get("engine")
	if engine == "" {
		respondError(w, http.StatusBadRequest, "engine is required")
		return
	}

	reports, err := s.app.Usage.History(r.Context(), engine)
	if err != nil {
		s.app.Log.Error("usage history failed", "engine", engine, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to read usage history")
		return
	}
	respondOK(w, reports)
}

func (s *Server) usageEnable(w http.ResponseWriter, r *http.Request) {
	engine := chi.URLParam(r, "engine")
	if engine == "" {
		respondError(w, http.StatusBadRequest, "engine is required")
		return
	}

	if err := s.app.Usage.ReEnable(r.Context(), engine); err != nil {
		s.app.Log.Error("usage re-enable failed", "engine", engine, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to re-enable engine")
		return
	}
	s.app.Log.Info("engine re-enabled", "engine", engine)
	respondOK(w, map[string]interface{}{})
}
