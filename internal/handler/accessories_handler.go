package handler

import (
	"net/http"

	"github.com/meowbank/meow-bank-go/internal/catalog"
	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Accessories Handlers
// ============================================================

type accessoryView struct {
	domain.Accessory
	Unlocked bool `json:"unlocked"`
	Equipped bool `json:"equipped"`
}

func listAccessoriesHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/accessories")
		defer span.End()

		profile := sess.State().Profile
		views := make([]accessoryView, 0, len(catalog.Accessories))
		for _, acc := range catalog.Accessories {
			views = append(views, accessoryView{
				Accessory: acc,
				Unlocked:  containsID(profile.UnlockedAccessories, acc.ID),
				Equipped:  containsID(profile.EquippedAccessories, acc.ID),
			})
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func toggleAccessoryHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accessories/{accessoryId}/toggle")
		defer span.End()

		accessoryID := chi.URLParam(r, "accessoryId")
		span.SetAttributes(attribute.String("accessory.id", accessoryID))

		if catalog.AccessoryByID(accessoryID) == nil {
			handleServiceError(w, &domain.ErrNotFound{Resource: "accessory", ID: accessoryID}, logger)
			return
		}

		state, applied := sess.ToggleAccessory(ctx, accessoryID)
		if !applied {
			writeError(w, http.StatusUnprocessableEntity, "accessory is not unlocked yet")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"equippedAccessories": state.Profile.EquippedAccessories,
		})
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
