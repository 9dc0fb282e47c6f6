package handler

import (
	"encoding/json"
	"net/http"

	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/engine"
	"github.com/meowbank/meow-bank-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Wishes Handlers
// ============================================================

func listWishesHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/wishes")
		defer span.End()
		writeJSON(w, http.StatusOK, sess.State().Wishes)
	}
}

type addWishRequest struct {
	Name         string `json:"name"`
	Emoji        string `json:"emoji"`
	TargetAmount int64  `json:"targetAmount"`
}

func addWishHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/wishes")
		defer span.End()

		var req addWishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "name", Message: "is required"}, logger)
			return
		}
		if req.TargetAmount <= 0 {
			handleServiceError(w, &domain.ErrValidation{Field: "targetAmount", Message: "must be positive"}, logger)
			return
		}

		state, applied := sess.AddWish(ctx, engine.WishInput{
			Name:         req.Name,
			Emoji:        req.Emoji,
			TargetAmount: req.TargetAmount,
		})
		if !applied {
			writeError(w, http.StatusUnprocessableEntity, "wish was not created")
			return
		}
		writeJSON(w, http.StatusCreated, state.Wishes[len(state.Wishes)-1])
	}
}

type waterWishRequest struct {
	Amount int64 `json:"amount"`
}

func waterWishHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/wishes/{wishId}/water")
		defer span.End()

		wishID := chi.URLParam(r, "wishId")
		span.SetAttributes(attribute.String("wish.id", wishID))

		var req waterWishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Amount <= 0 {
			handleServiceError(w, &domain.ErrValidation{Field: "amount", Message: "must be positive"}, logger)
			return
		}
		if !wishExists(sess.State(), wishID) {
			handleServiceError(w, &domain.ErrNotFound{Resource: "wish", ID: wishID}, logger)
			return
		}

		state, applied := sess.WaterWish(ctx, wishID, req.Amount)
		if !applied {
			writeError(w, http.StatusUnprocessableEntity, "watering was not applied")
			return
		}
		for _, wish := range state.Wishes {
			if wish.ID == wishID {
				writeJSON(w, http.StatusOK, wish)
				return
			}
		}
	}
}

func deleteWishHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/wishes/{wishId}")
		defer span.End()

		wishID := chi.URLParam(r, "wishId")
		if !wishExists(sess.State(), wishID) {
			handleServiceError(w, &domain.ErrNotFound{Resource: "wish", ID: wishID}, logger)
			return
		}

		sess.DeleteWish(ctx, wishID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func wishExists(state *domain.AppState, wishID string) bool {
	for _, wish := range state.Wishes {
		if wish.ID == wishID {
			return true
		}
	}
	return false
}
