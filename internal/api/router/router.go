package router

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/leadflow/internal/booking"
	httpmiddleware "github.com/wolfman30/leadflow/internal/http/middleware"
	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *booking.Handler
	BookingPage        *booking.Page
	LeadsHandler       *leads.Handler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// DefaultSite is where "/" sends visitors.
	DefaultSite string
	// SubmitLimiter throttles submits per client IP. Nil disables throttling.
	SubmitLimiter *httpmiddleware.RateLimiter
	HealthChecks  map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	limitSubmit := func(h http.HandlerFunc) http.Handler {
		if cfg.SubmitLimiter == nil {
			return h
		}
		return cfg.SubmitLimiter.Middleware(h)
	}

	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.BookingHandler != nil {
		if cfg.DefaultSite != "" && cfg.BookingPage != nil {
			home := "/sites/" + url.PathEscape(cfg.DefaultSite) + "/book"
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, home, http.StatusFound)
			})
		}
		r.Route("/sites/{siteID}", func(site chi.Router) {
			site.Get("/", cfg.BookingHandler.DescribeSite)
			site.Get("/contact", cfg.BookingHandler.Contact)
			site.Post("/bookings", cfg.BookingHandler.OpenSession)
			if cfg.BookingPage != nil {
				site.Get("/book", cfg.BookingPage.Show)
				site.Method(http.MethodPost, "/book", limitSubmit(cfg.BookingPage.Submit))
			}
		})
		r.Route("/bookings/{sessionID}", func(session chi.Router) {
			session.Get("/", cfg.BookingHandler.GetSession)
			session.Delete("/", cfg.BookingHandler.CloseSession)
			session.Patch("/fields", cfg.BookingHandler.UpdateFields)
			session.Method(http.MethodPost, "/submit", limitSubmit(cfg.BookingHandler.SubmitSession))
			session.Post("/open", cfg.BookingHandler.ReopenSession)
		})
	}

	if cfg.AdminAuthSecret != "" && cfg.LeadsHandler != nil {
		r.Route("/admin/sites/{siteID}", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Use(httpmiddleware.RequireSiteAccess)
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Get("/leads/{leadID}", cfg.LeadsHandler.GetLead)
		})
	}

	return r
}
