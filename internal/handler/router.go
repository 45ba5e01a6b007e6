package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	personaHandler "github.com/careloop/voicebridge/internal/handler/persona"
	relayHandler "github.com/careloop/voicebridge/internal/handler/relay"
	middlewarePkg "github.com/careloop/voicebridge/internal/middleware"
	personaModel "github.com/careloop/voicebridge/internal/model/persona"
	relayService "github.com/careloop/voicebridge/internal/service/relay"
	"github.com/careloop/voicebridge/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, relaySvc *relayService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":   "ok",
				"realtime": relaySvc.Configured(),
			})
		})

		personaHandler.New(personas).RegisterRoutes(api)
		relayHandler.New(relaySvc, personas).RegisterRoutes(api)
	})

	return r
}
