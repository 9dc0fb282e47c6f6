package handler

import (
	"encoding/json"
	"net/http"

	"github.com/meowbank/meow-bank-go/internal/catalog"
	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/engine"
	"github.com/meowbank/meow-bank-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transactions Handlers
// ============================================================

func listTransactionsHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()
		state := sess.State()
		writeJSON(w, http.StatusOK, map[string]any{
			"transactions": state.Transactions,
			"balance":      sess.Balance(),
			"totalSaved":   sess.TotalSaved(),
		})
	}
}

type addTransactionRequest struct {
	Amount     int64  `json:"amount"`
	CategoryID string `json:"categoryId"`
	Kind       string `json:"kind"`
	Note       string `json:"note"`
}

func addTransactionHandler(sess *service.Session, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var req addTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Amount <= 0 {
			handleServiceError(w, &domain.ErrValidation{Field: "amount", Message: "must be positive"}, logger)
			return
		}
		kind := domain.TransactionKind(req.Kind)
		if kind != domain.KindIncome && kind != domain.KindExpense {
			handleServiceError(w, &domain.ErrValidation{Field: "kind", Message: "must be income or expense"}, logger)
			return
		}
		category := catalog.CategoryByID(req.CategoryID)
		if category == nil {
			handleServiceError(w, &domain.ErrNotFound{Resource: "category", ID: req.CategoryID}, logger)
			return
		}
		if category.Kind != kind {
			handleServiceError(w, &domain.ErrValidation{Field: "categoryId", Message: "category kind does not match transaction kind"}, logger)
			return
		}
		span.SetAttributes(attribute.String("transaction.category", category.ID))

		state, applied := sess.AddTransaction(ctx, engine.TransactionInput{
			Amount:   req.Amount,
			Category: *category,
			Kind:     kind,
			Note:     req.Note,
		})
		if !applied {
			writeError(w, http.StatusUnprocessableEntity, "transaction was not recorded")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"transaction": state.Transactions[len(state.Transactions)-1],
			"profile":     state.Profile,
			"balance":     sess.Balance(),
		})
	}
}
