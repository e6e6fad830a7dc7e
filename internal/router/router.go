// Package router assembles the gin engine: middleware chain and routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/api"
	"github.com/pageza/recipefinder/backend/internal/middleware"
)

// Handlers groups the route handlers served by the engine.
type Handlers struct {
	Search          *api.SearchHandler
	Form            *api.FormHandler
	Recommendations *api.RecommendationsHandler
	History         *api.HistoryHandler
	Profile         *api.ProfileHandler
}

// Options configures the middleware chain.
type Options struct {
	Logger         *zerolog.Logger
	AllowedOrigins []string
	SecureCookies  bool
	Tokens         middleware.TokenValidator
	// RateLimiter and InFlight guard the submission routes; either may be nil.
	RateLimiter *middleware.IPRateLimiter
	InFlight    middleware.InFlightGuard
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(log), middleware.RequestLogger(log))
	if len(opts.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(opts.AllowedOrigins))
	}
	router.Use(middleware.Session(opts.SecureCookies))

	api.RegisterHealthRoutes(router)

	// Searching works signed in or not; history is recorded only for known users.
	public := router.Group("/api/v1", middleware.OptionalAuth(opts.Tokens, log))
	h.Form.RegisterRoutes(public)
	h.Recommendations.RegisterRoutes(public, router)

	var guards []gin.HandlerFunc
	if opts.RateLimiter != nil {
		guards = append(guards, opts.RateLimiter.RateLimitMiddleware())
	}
	if opts.InFlight != nil {
		guards = append(guards, middleware.SingleSubmission(opts.InFlight, log))
	}
	h.Search.RegisterRoutes(public, guards...)

	// Protected routes
	protected := router.Group("/api/v1", middleware.AuthMiddleware(opts.Tokens, log))
	h.Profile.RegisterRoutes(protected)

	dashboard := router.Group("/api", middleware.AuthMiddleware(opts.Tokens, log))
	h.History.RegisterRoutes(dashboard)

	return router
}
