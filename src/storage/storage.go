// Package storage is the persistence boundary for the scoring core. The
// services only ever see this interface; the sqlite implementation lives
// alongside it.
package storage

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

// ErrStoreFailed wraps any repository read/write failure surfaced to callers.
// The core never retries internally; retry policy belongs to the caller.
var ErrStoreFailed = errors.New("storage operation failed")

// Store is the repository consumed by the scoring services.
//
// Absent data is not an error: GetLatestHealthSnapshot returns (nil, nil) when
// the user has no snapshot yet, and list methods return empty slices.
type Store interface {
	// Account operations
	GetUserAccounts(userID int64) ([]models.Account, error)
	CreateAccount(a *models.Account) error
	UpdateAccountBalance(accountID, userID int64, balance decimal.Decimal) error

	// Transaction operations. limit <= 0 means no limit; days <= 0 means no
	// trailing-window restriction.
	GetUserTransactions(userID int64, limit, days int) ([]models.Transaction, error)
	CreateTransaction(t *models.Transaction) error
	UpdateTransactionCategory(txID int64, category, subcategory string, confidence float64) error
	UpdateTransactionAnomaly(txID int64, isAnomaly bool, zScore float64) error

	// Goal operations
	GetUserGoals(userID int64) ([]models.Goal, error)
	CreateGoal(g *models.Goal) error
	UpdateGoalProgress(goalID, userID int64, current decimal.Decimal, isCompleted bool) error

	// Financial health operations. Snapshots are append-only.
	CreateHealthSnapshot(s *models.HealthSnapshot) error
	GetLatestHealthSnapshot(userID int64) (*models.HealthSnapshot, error)
	GetHealthSnapshotHistory(userID int64, limit int) ([]models.HealthSnapshot, error)

	// Investment recommendation operations
	GetUserRecommendations(userID int64, activeOnly bool) ([]models.InvestmentRecommendation, error)
	CreateRecommendation(r *models.InvestmentRecommendation) error
	DeactivateUserRecommendations(userID int64) error
}
