package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mahtabthestranger/Mdilink/internal/handler/chat"
	widgetHandler "github.com/mahtabthestranger/Mdilink/internal/handler/widget"
	"github.com/mahtabthestranger/Mdilink/internal/logging"
	middlewarePkg "github.com/mahtabthestranger/Mdilink/internal/middleware"
	assistantService "github.com/mahtabthestranger/Mdilink/internal/service/assistant"
	"github.com/mahtabthestranger/Mdilink/pkg/utils"
)

// NewRouter wires HTTP routes. A nil assistantSvc leaves /api/chat unmounted,
// for deployments where the widget talks to an external assistant.
func NewRouter(assistantSvc *assistantService.Service, newWidget widgetHandler.Factory, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		if assistantSvc != nil {
			chat.New(assistantSvc, logger.With().Str("component", "chat-handler").Logger()).RegisterRoutes(api)
		}
	})

	if newWidget != nil {
		widgetHandler.New(newWidget, logger.With().Str("component", "widget-socket").Logger()).RegisterRoutes(r)
	}

	return r
}
