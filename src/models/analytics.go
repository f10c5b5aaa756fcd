package models

import "github.com/shopspring/decimal"

// CategorySpend is one slice of the spending breakdown chart.
type CategorySpend struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// SpendingAnalytics is the per-category expense breakdown over a period.
type SpendingAnalytics struct {
	Period           string          `json:"period"` // "month" or "quarter"
	TotalSpending    decimal.Decimal `json:"total_spending"`
	Categories       []CategorySpend `json:"categories"`
	TransactionCount int             `json:"transaction_count"`
}

// NetWorthPoint is one point of the net-worth history chart, taken from a
// persisted health snapshot.
type NetWorthPoint struct {
	Date     string          `json:"date"` // YYYY-MM-DD
	NetWorth decimal.Decimal `json:"net_worth"`
	Month    string          `json:"month"` // short month name for chart labels
}

// Insight is a deterministic natural-language observation for the user.
type Insight struct {
	Type     string `json:"type"` // alert, success, info
	Title    string `json:"title"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// DashboardData aggregates everything the dashboard page needs in one payload.
type DashboardData struct {
	Accounts           []Account                  `json:"accounts"`
	FinancialHealth    *HealthSnapshot            `json:"financial_health,omitempty"`
	RecentTransactions []Transaction              `json:"recent_transactions"`
	Goals              []Goal                     `json:"goals"`
	Recommendations    []InvestmentRecommendation `json:"investment_recommendations"`
}
