package handler

import (
	"net/http"
	"time"

	"github.com/meowbank/meow-bank-go/internal/infra/observability"
	"github.com/meowbank/meow-bank-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Every mutating route is an intent: the response carries the state
// after the transition, and a rejected intent answers 422.
func NewRouter(sess *service.Session, auth *service.ParentAuth, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 📸 State snapshot
		// GET /v1/state
		// =============================================
		r.Get("/state", getStateHandler(sess, logger))

		// =============================================
		// 2. 💰 Transactions
		// GET  /v1/transactions
		// POST /v1/transactions
		// =============================================
		r.Get("/transactions", listTransactionsHandler(sess, logger))
		r.Post("/transactions", addTransactionHandler(sess, logger))

		// =============================================
		// 3. 🐱 Cat hunger
		// POST /v1/hunger/refresh
		// =============================================
		r.Post("/hunger/refresh", refreshHungerHandler(sess, logger))

		// =============================================
		// 4. ⭐ Wishes
		// =============================================
		r.Get("/wishes", listWishesHandler(sess, logger))
		r.Post("/wishes", addWishHandler(sess, logger))
		r.Post("/wishes/{wishId}/water", waterWishHandler(sess, logger))
		r.Delete("/wishes/{wishId}", deleteWishHandler(sess, logger))

		// =============================================
		// 5. 🎀 Accessories
		// =============================================
		r.Get("/accessories", listAccessoriesHandler(sess, logger))
		r.Post("/accessories/{accessoryId}/toggle", toggleAccessoryHandler(sess, logger))

		// =============================================
		// 6. 📊 Stats
		// GET /v1/stats
		// GET /v1/metrics/intents
		// =============================================
		r.Get("/stats", getStatsHandler(sess, logger))
		r.Get("/metrics/intents", intentMetricsHandler(metrics, logger))

		// =============================================
		// 7. 🔐 Parent mode
		// =============================================
		r.Route("/parent", func(r chi.Router) {
			r.Post("/login", parentLoginHandler(auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(ParentAuthMiddleware(auth, logger))
				r.Post("/transactions/{txId}/approve", approveTransactionHandler(sess, logger))
				r.Post("/transactions/{txId}/heart", sendHeartHandler(sess, logger))
				r.Put("/config", updateParentConfigHandler(sess, logger))
				r.Post("/interest", applyInterestHandler(sess, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
