// backend/src/services/interfaces.go
package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

// Define common service errors
var (
	ErrCategorizationFailed = errors.New("transaction categorization failed")
	ErrAnomalyFailed        = errors.New("anomaly detection failed")
	ErrHealthFailed         = errors.New("financial health calculation failed")
	ErrRecommendationFailed = errors.New("investment recommendation failed")
	ErrAnalyticsFailed      = errors.New("analytics computation failed")

	// ErrNoPositionData is returned by a PositionProvider when no brokerage
	// positions exist for the user. Rebalancing degrades to a guidance
	// message instead of inventing holdings.
	ErrNoPositionData = errors.New("no brokerage position data available")
)

// CategorizationService scores transactions against the rule set and keeps the
// per-user spending profile current.
type CategorizationService interface {
	// Classify scores a single transaction. It never fails: when the profile
	// cannot be read it degrades to rule-only scoring, and when nothing
	// matches it returns the default category with floor confidence.
	Classify(description string, amount decimal.Decimal, transactionDate time.Time, userID int64, merchantName string) models.CategoryPrediction

	// CategorizeTransactions classifies every transaction of the user that
	// has no stored confidence yet. Returns the number processed.
	CategorizeTransactions(userID int64) (int, error)
}

// AnomalyService flags statistically unusual expense transactions.
type AnomalyService interface {
	// DetectAnomalies recomputes and persists the anomaly flag and z-score
	// for every expense transaction inside the trailing window.
	DetectAnomalies(userID int64) error
}

// ProfileService is the per-user spending profile store. Profiles are a soft
// cache keyed strictly by user id and are rebuilt from persisted transaction
// history on a miss. Profile returns a snapshot copy that is safe to read
// concurrently with RecordObservation.
type ProfileService interface {
	Profile(userID int64) (*models.UserSpendingProfile, error)
	RecordObservation(userID int64, category string, absAmount decimal.Decimal)
	Invalidate(userID int64)
}

// HealthService computes the financial health score and its snapshot history.
type HealthService interface {
	CalculateHealth(userID int64) (*models.HealthScoreBreakdown, error)
	GetHealthInsights(userID int64) ([]string, error)
}

// InvestmentService derives a risk profile and emits portfolio recommendations.
type InvestmentService interface {
	GenerateRecommendations(userID int64) ([]models.InvestmentRecommendation, error)
	RebalancePortfolio(userID int64) ([]string, error)
}

// AnalyticsService aggregates dashboard and reporting data.
type AnalyticsService interface {
	Dashboard(userID int64) (*models.DashboardData, error)
	SpendingAnalytics(userID int64, period string) (*models.SpendingAnalytics, error)
	NetWorthHistory(userID int64, months int) ([]models.NetWorthPoint, error)
	FinancialInsights(userID int64) ([]models.Insight, error)
}

// PositionProvider supplies actual brokerage positions (symbol -> current
// market value) for rebalancing. Simulated or random holdings are not an
// acceptable implementation of this interface.
type PositionProvider interface {
	Positions(userID int64) (map[string]decimal.Decimal, error)
}

// CreditScoreSource exposes the user's credit score when one has been
// supplied. Absence is an explicit state, never a generated placeholder.
type CreditScoreSource interface {
	CreditScore(userID int64) (*int, error)
}

// UnlinkedPositionProvider is the default PositionProvider for deployments
// without a brokerage feed: it reports that no position data exists.
type UnlinkedPositionProvider struct{}

func (UnlinkedPositionProvider) Positions(userID int64) (map[string]decimal.Decimal, error) {
	return nil, ErrNoPositionData
}
