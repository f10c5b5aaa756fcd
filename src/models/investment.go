package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Risk tolerance bands derived from the risk score.
const (
	ToleranceConservative = "conservative"
	ToleranceModerate     = "moderate"
	ToleranceAggressive   = "aggressive"
)

// Risk levels attached to individual recommended instruments.
const (
	RiskVeryLow = "very_low"
	RiskLow     = "low"
	RiskMedium  = "medium"
	RiskHigh    = "high"
)

// RiskProfile is the assessed investor profile for a user.
type RiskProfile struct {
	Score            int    `json:"score"` // 0-100
	Tolerance        string `json:"tolerance"`
	TimeHorizonYears int    `json:"time_horizon_years"`
}

// Portfolio is a target asset allocation in whole percentage points. The cash
// or uninvested remainder is implicit; the buckets never exceed 100 combined.
type Portfolio struct {
	Stocks        int `json:"stocks"`
	Bonds         int `json:"bonds"`
	International int `json:"international"`
	RealEstate    int `json:"real_estate"`
	Cash          int `json:"cash"`
}

// InvestmentRecommendation is a computed instrument suggestion. A regeneration
// run deactivates the previous rows and inserts a fresh active set.
type InvestmentRecommendation struct {
	ID                    int64           `json:"id"`
	UserID                int64           `json:"user_id"`
	Symbol                string          `json:"symbol"`
	Name                  string          `json:"name"`
	RecommendedAllocation decimal.Decimal `json:"recommended_allocation"` // percent
	RiskLevel             string          `json:"risk_level"`
	ExpectedReturn        string          `json:"expected_return"`
	Description           string          `json:"description"`
	IsActive              bool            `json:"is_active"`
	CreatedAt             time.Time       `json:"created_at"`
}
