// backend/src/handlers/investment_handler.go
package handlers

import (
	"net/http"

	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/storage"
	"github.com/username/finsight/backend/src/utils"
)

type InvestmentHandler struct {
	store       storage.Store
	investments services.InvestmentService
}

func NewInvestmentHandler(store storage.Store, investments services.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{store: store, investments: investments}
}

// HandleGetRecommendations returns the stored active recommendation set.
func (h *InvestmentHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	recommendations, err := h.store.GetUserRecommendations(userID, true)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to fetch recommendations", "error", err)
		utils.SendJSONError(w, "Failed to fetch recommendations", http.StatusInternalServerError)
		return
	}
	if recommendations == nil {
		recommendations = []models.InvestmentRecommendation{}
	}
	utils.SendJSONResponse(w, http.StatusOK, recommendations)
}

// HandleGenerateRecommendations recomputes the recommendation set from the
// latest health snapshot.
func (h *InvestmentHandler) HandleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	recommendations, err := h.investments.GenerateRecommendations(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Recommendation generation failed", "error", err)
		utils.SendJSONError(w, "Failed to generate recommendations", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, recommendations)
}

// HandleRebalance returns suggested buy/sell actions against actual holdings.
func (h *InvestmentHandler) HandleRebalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	actions, err := h.investments.RebalancePortfolio(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Rebalance computation failed", "error", err)
		utils.SendJSONError(w, "Failed to compute rebalancing actions", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{"actions": actions})
}
