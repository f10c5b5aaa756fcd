// backend/src/handlers/analytics_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/utils"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	dashboard, err := h.analytics.Dashboard(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Dashboard aggregation failed", "error", err)
		utils.SendJSONError(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, dashboard)
}

func (h *AnalyticsHandler) HandleGetSpendingAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	period := r.URL.Query().Get("period")
	analytics, err := h.analytics.SpendingAnalytics(userID, period)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Spending analytics failed", "error", err)
		utils.SendJSONError(w, "Failed to compute spending analytics", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, analytics)
}

func (h *AnalyticsHandler) HandleGetNetWorthHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	history, err := h.analytics.NetWorthHistory(userID, months)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Net worth history failed", "error", err)
		utils.SendJSONError(w, "Failed to load net worth history", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, history)
}

func (h *AnalyticsHandler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	insights, err := h.analytics.FinancialInsights(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Financial insights failed", "error", err)
		utils.SendJSONError(w, "Failed to compute insights", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{"insights": insights})
}
