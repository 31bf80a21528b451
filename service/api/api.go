package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	"mail_trans_engine/models/models"
	"mail_trans_engine/pkg/app"
	responsex "mail_trans_engine/pkg/response"
)

type Server struct {
	app *app.App
}

func Run(a *app.App) error {
	s := &Server{app: a}

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "mt-api-key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/translate", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Use(s.authApiKey)
			r.Post("/", s.translateCreate)
			r.Post("/routed", s.translateRouted)
			r.Post("/units", s.unitCreate)
			r.Post("/units/{id}/retranslate", s.unitRetranslate)
		})
	})

	r.Route("/batch", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Use(s.authApiKey)
			r.Post("/", s.batchSubmit)
			r.Get("/{id}", s.batchStatus)
			r.Post("/{id}/harvest", s.batchHarvest)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.authApiKey)
		r.Get("/cache/stats", s.cacheStats)
		r.Delete("/cache", s.cacheClear)
		r.Get("/usage", s.usageReport)
		r.Get("/usage/history", s.usageHistory)
		r.Post("/usage/{engine}/enable", s.usageEnable)
	})

	a.Log.Info("api service listening", "addr", a.Cfg.Listen)
	return http.ListenAndServe(a.Cfg.Listen, r)
}

func respondOK(w http.ResponseWriter, data interface{}) {
	responsex.RespondWithJSON(w, http.StatusOK, models.Response{
		Code: http.StatusOK,
		Msg:  "success",
		Data: data,
	})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	responsex.RespondWithJSON(w, status, models.Response{
		Code: status,
		Msg:  msg,
		Data: map[string]interface{}{},
	})
}
