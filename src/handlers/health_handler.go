// backend/src/handlers/health_handler.go
package handlers

import (
	"net/http"

	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/utils"
)

type HealthHandler struct {
	health services.HealthService
}

func NewHealthHandler(health services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// HandleGetFinancialHealth recalculates and returns the summary score.
func (h *HealthHandler) HandleGetFinancialHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	breakdown, err := h.health.CalculateHealth(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Health calculation failed", "error", err)
		utils.SendJSONError(w, "Failed to calculate financial health", http.StatusInternalServerError)
		return
	}

	summary := "Needs Improvement"
	switch {
	case breakdown.TotalScore >= 85:
		summary = "Excellent"
	case breakdown.TotalScore >= 70:
		summary = "Good"
	case breakdown.TotalScore >= 50:
		summary = "Fair"
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"health_score": breakdown.TotalScore,
		"summary":      summary,
		"metrics":      breakdown.Metrics,
	})
}

// HandleGetDetailedHealth returns the full sub-score breakdown with
// recommendations.
func (h *HealthHandler) HandleGetDetailedHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	breakdown, err := h.health.CalculateHealth(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Health calculation failed", "error", err)
		utils.SendJSONError(w, "Failed to calculate financial health", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, breakdown)
}

// HandleGetHealthInsights returns the textual insights for the latest
// snapshot without forcing a recalculation.
func (h *HealthHandler) HandleGetHealthInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	insights, err := h.health.GetHealthInsights(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Health insights failed", "error", err)
		utils.SendJSONError(w, "Failed to fetch health insights", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{"insights": insights})
}
