package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/drsite/drsite-web/config"
	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/handlers"
	"github.com/drsite/drsite-web/internal/middleware"
	"github.com/drsite/drsite-web/internal/page"
	"github.com/drsite/drsite-web/internal/services"
	"github.com/drsite/drsite-web/internal/web"
	"github.com/drsite/drsite-web/pkg/metrics"
)

// routerDeps are the components the HTTP routes are built from.
type routerDeps struct {
	cfg         *config.Config
	renderer    *web.Renderer
	definitions []forms.Definition
	store       *page.Store
	submissions services.SubmissionServiceInterface
	logs        *handlers.LogsHandler
	ready       func() error
}

// registerValidations installs the form field rules on gin's validator so
// the JSON API binds with the same checks the page forms run.
func registerValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return forms.RegisterValidations(v)
}

// newRouter wires middleware and routes. ctx bounds the background work of
// the rate limiters.
func newRouter(ctx context.Context, deps routerDeps) *gin.Engine {
	cfg := deps.cfg

	router := gin.New()
	router.HTMLRender = deps.renderer
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		// An invalid proxy list falls back to trusting none
		_ = router.SetTrustedProxies(nil) //nolint:errcheck
	}

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.Site.DatastarURL))

	// Rate limiters per endpoint type
	generalRateLimiter := middleware.NewRateLimiter(ctx, 50, 100)  // pages and streams
	eventRateLimiter := middleware.NewRateLimiter(ctx, 20, 40)     // debounced input events
	submitRateLimiter := middleware.NewRateLimiter(ctx, 0.5, 5)    // one submit per 2s, burst of 5 (prevent spam)
	apiSubmitRateLimiter := middleware.NewRateLimiter(ctx, 0.1, 3) // JSON submissions, no busy window to slow them down

	pageHandler := handlers.NewPageHandler(deps.store, cfg.Site)
	formHandler := handlers.NewFormHandler(deps.store)
	consentHandler := handlers.NewConsentHandler(cfg.Site.CookieSecure)
	submissionHandler := handlers.NewSubmissionHandler(deps.submissions, deps.definitions, cfg.Site.Lang)
	healthHandler := handlers.NewHealthHandler(deps.ready)

	// Pages
	for _, info := range web.Pages {
		router.GET(info.Path, generalRateLimiter.Middleware(), pageHandler.Render(info))
	}
	if home, ok := web.LookupPage("index"); ok {
		router.GET("/index.html", generalRateLimiter.Middleware(), pageHandler.Render(home))
	}
	router.GET("/thank_you.html", func(c *gin.Context) {
		c.FileFromFS("thank_you.html", http.FS(web.Static()))
	})
	router.StaticFS("/static", http.FS(web.Static()))

	// Page events
	pages := router.Group("/pages/:pageID")
	pages.GET("/stream", generalRateLimiter.Middleware(), pageHandler.Stream)
	pages.POST("/forms/:formID/submit", submitRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(middleware.EventBodyLimit), formHandler.Submit)
	pages.POST("/forms/:formID/fields/:field/touch", eventRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(middleware.EventBodyLimit), formHandler.Touch)
	pages.POST("/notices/:noticeID/dismiss", eventRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(middleware.EventBodyLimit), formHandler.Dismiss)

	router.POST("/consent/:choice", eventRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(middleware.EventBodyLimit), consentHandler.Choose)

	// CORS applies to the API only; pages and events are same-origin
	allowedOrigins := append([]string(nil), cfg.Server.AllowedOrigins...)
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:8080", "http://127.0.0.1:8080")
	}
	api := router.Group("/api")
	if len(allowedOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Utility endpoints (not versioned)
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := api.Group("/v1")
	v1.POST("/forms/:formID/submissions", apiSubmitRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(middleware.EventBodyLimit), submissionHandler.Create)
	if deps.logs != nil {
		v1.POST("/logs", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(middleware.LogsBodyLimit), deps.logs.ReceiveFrontendLogs)
	}

	return router
}
