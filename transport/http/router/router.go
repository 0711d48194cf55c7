package router

import (
	"net/http"

	"hotel/config"
	"hotel/internal/handlers/booking"
	"hotel/internal/handlers/legacy"
	"hotel/internal/handlers/room"
	"hotel/shared/constant"
	"hotel/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

var (
	defaultAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	defaultAllowedHeaders = []string{constant.RequestHeaderContentType}
)

type DomainHandlers struct {
	Room    room.Handler
	Booking booking.Handler
	Legacy  legacy.Handler
}

type Router struct {
	Config         *config.Config
	Middleware     middleware.AppMiddleware
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(
		r.corsHandler(),
		r.Middleware.RequestID,
		r.Middleware.Tracing,
		r.Middleware.Logging,
		r.Middleware.RateLimit(),
	)

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
	})

	r.DomainHandlers.Legacy.Router(router)
}

// corsHandler applies the configured policy, or allows any origin when CORS is not configured.
func (r *Router) corsHandler() func(next http.Handler) http.Handler {
	policy := r.Config.App.CORS

	options := cors.Options{
		AllowedOrigins:   []string{constant.Asterix},
		AllowedMethods:   defaultAllowedMethods,
		AllowedHeaders:   defaultAllowedHeaders,
		AllowCredentials: policy.AllowCredentials,
		MaxAge:           policy.MaxAgeSeconds,
	}

	if policy.Enable {
		if len(policy.AllowedOrigins) > 0 {
			options.AllowedOrigins = policy.AllowedOrigins
		}

		if len(policy.AllowedMethods) > 0 {
			options.AllowedMethods = policy.AllowedMethods
		}

		if len(policy.AllowedHeaders) > 0 {
			options.AllowedHeaders = policy.AllowedHeaders
		}
	}

	return cors.Handler(options)
}

func New(cfg *config.Config, appMiddleware middleware.AppMiddleware, domainHandlers DomainHandlers) Router {
	return Router{
		Config:         cfg,
		Middleware:     appMiddleware,
		DomainHandlers: domainHandlers,
	}
}
