// backend/src/handlers/account_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/security/validation"
	"github.com/username/finsight/backend/src/storage"
	"github.com/username/finsight/backend/src/utils"
)

type AccountHandler struct {
	store storage.Store
}

func NewAccountHandler(store storage.Store) *AccountHandler {
	return &AccountHandler{store: store}
}

func (h *AccountHandler) HandleGetAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	accounts, err := h.store.GetUserAccounts(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to fetch accounts", "error", err)
		utils.SendJSONError(w, "Failed to fetch accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	utils.SendJSONResponse(w, http.StatusOK, accounts)
}

func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload struct {
		AccountType     string `json:"account_type"`
		AccountName     string `json:"account_name"`
		InstitutionName string `json:"institution_name"`
		Balance         string `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload.AccountName = validation.CleanDescription(payload.AccountName)
	payload.InstitutionName = validation.CleanDescription(payload.InstitutionName)
	// The schema constrains account_type to the lowercase set.
	payload.AccountType = strings.ToLower(strings.TrimSpace(payload.AccountType))

	if err := validation.ValidateStringNotEmpty(payload.AccountName, "account_name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(payload.AccountName, validation.MaxNameLength, "account_name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateAccountType(payload.AccountType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	balance, err := validation.ValidateAmountString(payload.Balance, "balance")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	account := models.Account{
		UserID:          userID,
		AccountType:     payload.AccountType,
		AccountName:     payload.AccountName,
		InstitutionName: payload.InstitutionName,
		Balance:         balance,
		IsActive:        true,
	}
	if err := h.store.CreateAccount(&account); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to create account", "error", err)
		utils.SendJSONError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	logger.InfoFromContext(r.Context(), "Account created", "accountID", account.ID, "type", account.AccountType)
	utils.SendJSONResponse(w, http.StatusCreated, account)
}

func (h *AccountHandler) HandleUpdateAccountBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Balance string `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	balance, err := validation.ValidateAmountString(payload.Balance, "balance")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateAccountBalance(accountID, userID, balance); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to update account balance", "accountID", accountID, "error", err)
		utils.SendJSONError(w, "Failed to update account balance", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "Balance updated"})
}
