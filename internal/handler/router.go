package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/angtech/catalog-api/internal/config"
	"github.com/angtech/catalog-api/internal/infra/observability"
	"github.com/angtech/catalog-api/internal/infra/upload"
	"github.com/angtech/catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the router needs.
type Services struct {
	Intake    *service.Intake
	Catalog   *service.Catalog
	Enquiries *service.EnquiryService
	Customers *service.CustomerService
	Auth      *service.AuthService
	Uploads   *upload.Storage
	Metrics   *observability.Metrics
	DB        Pinger
}

// NewRouter creates the HTTP router with all routes and middleware.
// Public routes serve the storefront; everything under authentication is
// the back office.
func NewRouter(cfg *config.Config, svcs Services, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.TraceContext)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.DB, logger))
	r.Get("/readyz", readyzHandler(svcs.DB))
	r.Handle("/metrics", promhttp.HandlerFor(svcs.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- Uploaded images ---
	fileServer := http.FileServer(http.Dir(svcs.Uploads.Dir()))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	// --- API ---
	r.Route("/api", func(r chi.Router) {

		// Public storefront routes
		r.Get("/products", listProductsHandler(svcs.Catalog, logger))
		r.Get("/products/filters", catalogFiltersHandler(svcs.Catalog, logger))
		r.Get("/products/{id}", getProductHandler(svcs.Catalog, logger))
		r.Post("/enquiries", submitEnquiryHandler(svcs.Intake, logger))

		// Auth
		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))

		// Back office
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Any authenticated user
			r.Get("/auth/me", authMeHandler(svcs.Auth, logger))
			r.Get("/enquiries/{id}", getEnquiryHandler(svcs.Enquiries, logger))
			r.Get("/customers/{id}", getCustomerHandler(svcs.Customers, logger))

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(logger))

				// Product management
				r.Post("/products", createProductHandler(svcs.Catalog, logger))
				r.Put("/products/{id}", updateProductHandler(svcs.Catalog, logger))
				r.Delete("/products/{id}", deleteProductHandler(svcs.Catalog, logger))

				// Enquiry case management
				r.Get("/enquiries", listEnquiriesHandler(svcs.Enquiries, logger))
				r.Patch("/enquiries/{id}/status", setEnquiryStatusHandler(svcs.Enquiries, logger))
				r.Post("/enquiries/{id}/notes", addEnquiryNoteHandler(svcs.Enquiries, logger))
				r.Patch("/enquiries/{id}/follow-up", setEnquiryFollowUpHandler(svcs.Enquiries, logger))

				// Customer management
				r.Get("/customers", listCustomersHandler(svcs.Customers, logger))
				r.Put("/customers/{id}", updateCustomerHandler(svcs.Customers, logger))
				r.Post("/customers/{id}/notes", addCustomerNoteHandler(svcs.Customers, logger))
				r.Post("/customers/{id}/tags", addCustomerTagHandler(svcs.Customers, logger))
				r.Patch("/customers/{id}/tags", setCustomerTagsHandler(svcs.Customers, logger))
				r.Delete("/customers/{id}/tags/{tag}", removeCustomerTagHandler(svcs.Customers, logger))
				r.Patch("/customers/{id}/follow-up", setCustomerFollowUpHandler(svcs.Customers, logger))
				r.Patch("/customers/{id}/last-contact", touchCustomerContactHandler(svcs.Customers, logger))

				// Image upload
				r.Post("/upload", uploadImagesHandler(svcs.Uploads, svcs.Metrics, cfg.MaxUploadFiles, cfg.MaxUploadSize, logger))

				// Stats
				r.Get("/admin/stats", adminStatsHandler(svcs.Metrics))
			})
		})
	})

	return r
}

// ============================================================
// Probes & stats
// ============================================================

func healthzHandler(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				logger.Error("healthz: database unreachable", zap.Error(err))
				status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, code, map[string]string{"status": status})
	}
}

func readyzHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func adminStatsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
