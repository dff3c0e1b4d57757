package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	apiContext "visitr/internal/api/context"
	"visitr/internal/api/handlers"
	"visitr/internal/api/middleware"
	"visitr/internal/pkg/response"
	"visitr/internal/platform/config"
	"visitr/internal/platform/metrics"
)

type Dependencies struct {
	AuthHandler      *handlers.AuthHandler
	OrgHandler       *handlers.OrgHandler
	GuestHandler     *handlers.GuestHandler
	QRHandler        *handlers.QRHandler
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	TenantMiddleware *middleware.TenantMiddleware
	Limiter          middleware.Limiter
	RateLimit        config.RateLimitConfig
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, http.StatusNotFound, "Route not found", "")
	})

	// Middleware references
	authMid := deps.AuthMiddleware
	tenantMid := deps.TenantMiddleware
	authLimit := middleware.RateLimit(deps.Limiter, "auth", deps.RateLimit.AuthPerMinute)
	publicLimit := middleware.RateLimit(deps.Limiter, "public", deps.RateLimit.PublicPerMinute)

	router.GET("/api/health", wrap(deps.HealthHandler.Check))
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	// Authentication routes
	router.POST("/api/auth/login", chain(deps.AuthHandler.Login, authLimit))
	router.POST("/api/auth/register", chain(deps.AuthHandler.Register, authLimit))

	// Organization management
	router.GET("/api/organizations/:id", chain(deps.OrgHandler.GetPublic, publicLimit))
	router.PUT("/api/organizations/profile",
		chain(deps.OrgHandler.UpdateProfile, authMid.Handle, tenantMid.Handle))

	// Guest self-service, reached from the QR code
	router.POST("/api/guests/register", chain(deps.GuestHandler.Register, publicLimit))
	router.POST("/api/guests/signout", chain(deps.GuestHandler.SelfSignOut, publicLimit))

	// Guest administration
	router.GET("/api/guests",
		chain(deps.GuestHandler.List, authMid.Handle, tenantMid.Handle))
	router.GET("/api/guests/export",
		chain(deps.GuestHandler.Export, authMid.Handle, tenantMid.Handle))
	router.PATCH("/api/guests/:id/assign-id",
		chain(deps.GuestHandler.AssignID, authMid.Handle, tenantMid.Handle))
	router.PATCH("/api/guests/:id/signout",
		chain(deps.GuestHandler.AdminSignOut, authMid.Handle, tenantMid.Handle))
	router.PATCH("/api/guests/:id/extend",
		chain(deps.GuestHandler.Extend, authMid.Handle, tenantMid.Handle))

	// QR codes
	router.POST("/api/qr/generate",
		chain(deps.QRHandler.Generate, authMid.Handle, tenantMid.Handle))
	router.GET("/api/qr/current",
		chain(deps.QRHandler.Current, authMid.Handle, tenantMid.Handle))
	router.GET("/api/qr/download",
		chain(deps.QRHandler.Download, authMid.Handle, tenantMid.Handle))

	// Dashboard
	router.GET("/api/dashboard/stats",
		chain(deps.DashboardHandler.Stats, authMid.Handle, tenantMid.Handle))
	router.GET("/api/dashboard/activity",
		chain(deps.DashboardHandler.Activity, authMid.Handle, tenantMid.Handle))

	return router
}

// NewHTTPHandler wraps the router with CORS, request metrics and access logging.
func NewHTTPHandler(router http.Handler, cfg config.CORSConfig) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})
	return middleware.AccessLog(metrics.HTTPMetricsMiddleware(c.Handler(router)))
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
