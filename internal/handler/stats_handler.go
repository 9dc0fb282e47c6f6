package handler

import (
	"net/http"

	"github.com/meowbank/meow-bank-go/internal/infra/observability"
	"github.com/meowbank/meow-bank-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Stats Handlers
// ============================================================

func getStatsHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/stats")
		defer span.End()
		writeJSON(w, http.StatusOK, sess.Stats(ctx))
	}
}

// knownIntents lists every intent the session dispatches, in the
// order the JSON metrics endpoint reports them.
var knownIntents = []string{
	"addTransaction",
	"updateHunger",
	"addWish",
	"waterWish",
	"deleteWish",
	"toggleAccessory",
	"approveTransaction",
	"sendHeart",
	"updateParentConfig",
	"applyInterest",
}

func intentMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/intents")
		defer span.End()
		writeJSON(w, http.StatusOK, metrics.GetIntentSnapshot(knownIntents))
	}
}
