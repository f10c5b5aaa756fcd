// backend/src/handlers/goal_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/security/validation"
	"github.com/username/finsight/backend/src/storage"
	"github.com/username/finsight/backend/src/utils"
)

type GoalHandler struct {
	store storage.Store
}

func NewGoalHandler(store storage.Store) *GoalHandler {
	return &GoalHandler{store: store}
}

func (h *GoalHandler) HandleGetGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	goals, err := h.store.GetUserGoals(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to fetch goals", "error", err)
		utils.SendJSONError(w, "Failed to fetch goals", http.StatusInternalServerError)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	utils.SendJSONResponse(w, http.StatusOK, goals)
}

func (h *GoalHandler) HandleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Name          string `json:"name"`
		TargetAmount  string `json:"target_amount"`
		CurrentAmount string `json:"current_amount"`
		TargetDate    string `json:"target_date"`
		GoalType      string `json:"goal_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload.Name = validation.CleanDescription(payload.Name)
	if err := validation.ValidateStringNotEmpty(payload.Name, "name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(payload.Name, validation.MaxNameLength, "name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateGoalType(payload.GoalType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	target, err := validation.ValidateAmountString(payload.TargetAmount, "target_amount")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !target.IsPositive() {
		utils.SendJSONError(w, "target_amount must be positive", http.StatusBadRequest)
		return
	}

	current := decimal.Zero
	if payload.CurrentAmount != "" {
		current, err = validation.ValidateAmountString(payload.CurrentAmount, "current_amount")
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	goal := models.Goal{
		UserID:        userID,
		Name:          payload.Name,
		TargetAmount:  target,
		CurrentAmount: current,
		GoalType:      payload.GoalType,
	}
	if payload.TargetDate != "" {
		targetDate, err := validation.ValidateDateString(payload.TargetDate, "target_date", true)
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		goal.TargetDate.Valid = true
		goal.TargetDate.Time = targetDate
	}

	if err := h.store.CreateGoal(&goal); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to create goal", "error", err)
		utils.SendJSONError(w, "Failed to create goal", http.StatusInternalServerError)
		return
	}

	logger.InfoFromContext(r.Context(), "Goal created", "goalID", goal.ID, "type", goal.GoalType)
	utils.SendJSONResponse(w, http.StatusCreated, goal)
}

// HandleUpdateGoalProgress sets the current amount; the goal flips to
// completed when it reaches the target.
func (h *GoalHandler) HandleUpdateGoalProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	goalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid goal id", http.StatusBadRequest)
		return
	}

	var payload struct {
		CurrentAmount string `json:"current_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	current, err := validation.ValidateAmountString(payload.CurrentAmount, "current_amount")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	goals, err := h.store.GetUserGoals(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to fetch goals for progress update", "error", err)
		utils.SendJSONError(w, "Failed to update goal", http.StatusInternalServerError)
		return
	}
	var goal *models.Goal
	for i := range goals {
		if goals[i].ID == goalID {
			goal = &goals[i]
			break
		}
	}
	if goal == nil {
		utils.SendJSONError(w, "Goal not found", http.StatusNotFound)
		return
	}

	isCompleted := current.GreaterThanOrEqual(goal.TargetAmount)
	if err := h.store.UpdateGoalProgress(goalID, userID, current, isCompleted); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to update goal progress", "goalID", goalID, "error", err)
		utils.SendJSONError(w, "Failed to update goal", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":      "Goal progress updated",
		"is_completed": isCompleted,
	})
}
