package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// HealthMetrics are the raw derived metrics the scorer works from.
type HealthMetrics struct {
	NetWorth            decimal.Decimal `json:"net_worth"`
	MonthlyIncome       decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses     decimal.Decimal `json:"monthly_expenses"`
	SavingsRate         float64         `json:"savings_rate"`          // percent
	DebtToIncomeRatio   float64         `json:"debt_to_income_ratio"`  // percent
	EmergencyFundMonths float64         `json:"emergency_fund_months"` // months of expenses covered
	CreditScore         sql.NullInt64   `json:"credit_score,omitempty"`
}

// HealthScoreBreakdown is the scorer output. The five sub-scores always sum to
// TotalScore and TotalScore is within [0, 100].
type HealthScoreBreakdown struct {
	TotalScore         int           `json:"total_score"`
	SavingsScore       int           `json:"savings_score"`
	DebtScore          int           `json:"debt_score"`
	EmergencyFundScore int           `json:"emergency_fund_score"`
	SpendingScore      int           `json:"spending_score"`
	CreditScore        int           `json:"credit_score"`
	Metrics            HealthMetrics `json:"metrics"`
	Recommendations    []string      `json:"recommendations"`
}

// HealthSnapshot is a point-in-time computed result, immutable once created.
// Recalculation appends a new row; "latest" is the most recent calculated_at.
type HealthSnapshot struct {
	ID                  int64           `json:"id"`
	UserID              int64           `json:"user_id"`
	HealthScore         int             `json:"health_score"`
	NetWorth            decimal.Decimal `json:"net_worth"`
	MonthlyIncome       decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses     decimal.Decimal `json:"monthly_expenses"`
	SavingsRate         decimal.Decimal `json:"savings_rate"`
	DebtToIncomeRatio   decimal.Decimal `json:"debt_to_income_ratio"`
	EmergencyFundMonths decimal.Decimal `json:"emergency_fund_months"`
	CreditScore         sql.NullInt64   `json:"credit_score,omitempty"`
	CalculatedAt        time.Time       `json:"calculated_at"`
}
