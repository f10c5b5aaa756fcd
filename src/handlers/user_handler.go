// backend/src/handlers/user_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/finsight/backend/src/database"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/model"
	"github.com/username/finsight/backend/src/security/validation"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/utils"
)

// UserHandler owns profile mutations and demo data seeding.
type UserHandler struct {
	seedService *services.SeedService
	profiles    services.ProfileService
}

func NewUserHandler(seedService *services.SeedService, profiles services.ProfileService) *UserHandler {
	return &UserHandler{seedService: seedService, profiles: profiles}
}

// HandleSetCreditScore stores a self-reported credit score. A null score
// clears the stored value; scoring then proceeds without the credit
// component.
func (h *UserHandler) HandleSetCreditScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload struct {
		CreditScore *int `json:"credit_score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.CreditScore != nil {
		if err := validation.ValidateCreditScore(*payload.CreditScore); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := model.SetUserCreditScore(database.DB, userID, payload.CreditScore); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to set credit score", "error", err)
		utils.SendJSONError(w, "Failed to update credit score", http.StatusInternalServerError)
		return
	}

	logger.InfoFromContext(r.Context(), "Credit score updated", "cleared", payload.CreditScore == nil)
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "Credit score updated"})
}

// HandleSeedDemoData populates the authenticated user with the demo data set
// and runs the full scoring pipeline over it. Fails if the user already has
// accounts.
func (h *UserHandler) HandleSeedDemoData(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.seedService.SeedDemoData(userID); err != nil {
		logger.ErrorFromContext(r.Context(), "Demo data seeding failed", "error", err)
		utils.SendJSONError(w, "Failed to seed demo data", http.StatusConflict)
		return
	}

	h.profiles.Invalidate(userID)
	utils.SendJSONResponse(w, http.StatusCreated, map[string]string{"message": "Demo data created"})
}
