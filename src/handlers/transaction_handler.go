// backend/src/handlers/transaction_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/security/validation"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/storage"
	"github.com/username/finsight/backend/src/utils"
)

type TransactionHandler struct {
	store          storage.Store
	categorization services.CategorizationService
	anomalies      services.AnomalyService
}

func NewTransactionHandler(store storage.Store, categorization services.CategorizationService, anomalies services.AnomalyService) *TransactionHandler {
	return &TransactionHandler{
		store:          store,
		categorization: categorization,
		anomalies:      anomalies,
	}
}

// HandleGetTransactions lists the user's transactions, newest first. Optional
// query params: limit, days.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	transactions, err := h.store.GetUserTransactions(userID, limit, days)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to fetch transactions", "error", err)
		utils.SendJSONError(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	utils.SendJSONResponse(w, http.StatusOK, transactions)
}

// HandleAddManualTransaction creates a transaction on one of the user's own
// accounts and classifies it immediately.
func (h *TransactionHandler) HandleAddManualTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload struct {
		AccountID       int64  `json:"account_id"`
		Amount          string `json:"amount"`
		Description     string `json:"description"`
		TransactionDate string `json:"transaction_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload.Description = validation.CleanDescription(payload.Description)
	if err := validation.ValidateStringNotEmpty(payload.Description, "description"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(payload.Description, validation.MaxDescriptionLength, "description"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, err := validation.ValidateAmountString(payload.Amount, "amount")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactionDate := time.Now()
	if payload.TransactionDate != "" {
		transactionDate, err = validation.ValidateDateString(payload.TransactionDate, "transaction_date", false)
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if !h.userOwnsAccount(userID, payload.AccountID) {
		utils.SendJSONError(w, "Account not found", http.StatusNotFound)
		return
	}

	prediction := h.categorization.Classify(payload.Description, amount, transactionDate, userID, payload.Description)

	tx := models.Transaction{
		AccountID:       payload.AccountID,
		Amount:          amount,
		Description:     payload.Description,
		Category:        prediction.Category,
		Subcategory:     prediction.Subcategory,
		TransactionDate: transactionDate,
		IsIncome:        amount.IsPositive(),
	}
	if err := h.store.CreateTransaction(&tx); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to create transaction", "error", err)
		utils.SendJSONError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}
	if err := h.store.UpdateTransactionCategory(tx.ID, prediction.Category, prediction.Subcategory, prediction.Confidence); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to persist category for new transaction", "txID", tx.ID, "error", err)
	}

	logger.InfoFromContext(r.Context(), "Manual transaction created",
		"txID", tx.ID, "category", prediction.Category, "confidence", prediction.Confidence)
	utils.SendJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"transaction": tx,
		"prediction":  prediction,
	})
}

// HandleCategorize runs the classifier over every stored transaction of the
// user that has no confidence yet.
func (h *TransactionHandler) HandleCategorize(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	processed, err := h.categorization.CategorizeTransactions(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Categorization run failed", "error", err)
		utils.SendJSONError(w, "Categorization failed", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":   "Categorization complete",
		"processed": processed,
	})
}

// HandleDetectAnomalies recomputes anomaly flags over the trailing window.
func (h *TransactionHandler) HandleDetectAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.anomalies.DetectAnomalies(userID); err != nil {
		logger.ErrorFromContext(r.Context(), "Anomaly detection run failed", "error", err)
		utils.SendJSONError(w, "Anomaly detection failed", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "Anomaly detection complete"})
}

func (h *TransactionHandler) userOwnsAccount(userID, accountID int64) bool {
	accounts, err := h.store.GetUserAccounts(userID)
	if err != nil {
		return false
	}
	for _, a := range accounts {
		if a.ID == accountID {
			return true
		}
	}
	return false
}
