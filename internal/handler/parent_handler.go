package handler

import (
	"encoding/json"
	"net/http"

	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Parent Mode Handlers
// ============================================================

func parentLoginHandler(auth *service.ParentAuth, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/parent/login")
		defer span.End()

		var req domain.ParentLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Pin == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "pin", Message: "is required"}, logger)
			return
		}

		resp, err := auth.Login(ctx, req.Pin)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func approveTransactionHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/parent/transactions/{txId}/approve")
		defer span.End()

		txID := chi.URLParam(r, "txId")
		span.SetAttributes(attribute.String("transaction.id", txID))

		if !transactionExists(sess.State(), txID) {
			handleServiceError(w, &domain.ErrNotFound{Resource: "transaction", ID: txID}, logger)
			return
		}

		state, applied := sess.ApproveTransaction(ctx, txID)
		writeTransaction(w, state, txID, applied)
	}
}

func sendHeartHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/parent/transactions/{txId}/heart")
		defer span.End()

		txID := chi.URLParam(r, "txId")
		span.SetAttributes(attribute.String("transaction.id", txID))

		if !transactionExists(sess.State(), txID) {
			handleServiceError(w, &domain.ErrNotFound{Resource: "transaction", ID: txID}, logger)
			return
		}

		state, applied := sess.SendHeart(ctx, txID)
		writeTransaction(w, state, txID, applied)
	}
}

func updateParentConfigHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/parent/config")
		defer span.End()

		var patch domain.ParentConfigPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if patch.InterestRate != nil && *patch.InterestRate <= 0 {
			handleServiceError(w, &domain.ErrValidation{Field: "interestRate", Message: "must be positive"}, logger)
			return
		}
		if patch.InterestPeriod != nil &&
			*patch.InterestPeriod != domain.PeriodWeekly && *patch.InterestPeriod != domain.PeriodMonthly {
			handleServiceError(w, &domain.ErrValidation{Field: "interestPeriod", Message: "must be weekly or monthly"}, logger)
			return
		}

		state, _ := sess.UpdateParentConfig(ctx, patch)
		writeJSON(w, http.StatusOK, state.ParentConfig)
	}
}

func applyInterestHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/parent/interest")
		defer span.End()

		state, applied := sess.ApplyInterest(ctx)
		if !applied {
			writeError(w, http.StatusUnprocessableEntity, "no interest to apply")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"transaction":  state.Transactions[len(state.Transactions)-1],
			"parentConfig": state.ParentConfig,
			"balance":      sess.Balance(),
		})
	}
}

func writeTransaction(w http.ResponseWriter, state *domain.AppState, txID string, applied bool) {
	for _, tx := range state.Transactions {
		if tx.ID == txID {
			writeJSON(w, http.StatusOK, map[string]any{
				"applied":     applied,
				"transaction": tx,
			})
			return
		}
	}
}

func transactionExists(state *domain.AppState, txID string) bool {
	for _, tx := range state.Transactions {
		if tx.ID == txID {
			return true
		}
	}
	return false
}
