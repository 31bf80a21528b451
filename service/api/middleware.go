package api

import "net/http"

// authApiKey checks the shared API key header. An empty configured key
// disables the check for local development.
func (s *Server) authApiKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.app.Cfg.AdminKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get("mt-api-key")
		if apiKey == "" {
			respondError(w, http.StatusUnauthorized, "Missing API Key")
			return
		}
		if apiKey != s.app.Cfg.AdminKey {
			respondError(w, http.StatusUnauthorized, "Invalid API Key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
