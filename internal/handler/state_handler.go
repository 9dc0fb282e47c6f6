package handler

import (
	"net/http"

	"github.com/meowbank/meow-bank-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// State Handlers
// ============================================================

func getStateHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state")
		defer span.End()
		writeJSON(w, http.StatusOK, sess.State())
	}
}

func refreshHungerHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/hunger/refresh")
		defer span.End()
		state, applied := sess.RefreshHunger(ctx)
		writeJSON(w, http.StatusOK, map[string]any{
			"applied": applied,
			"profile": state.Profile,
		})
	}
}
