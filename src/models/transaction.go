package models

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable record of a single financial event. It is created
// by sync or manual entry and only the classifier (category fields) and the
// anomaly detector (anomaly fields) ever mutate it afterwards.
type Transaction struct {
	ID                 int64               `json:"id"`
	AccountID          int64               `json:"account_id"`
	Amount             decimal.Decimal     `json:"amount"` // signed; negative = expense
	Description        string              `json:"description"`
	Category           string              `json:"category"`
	Subcategory        string              `json:"subcategory,omitempty"`
	TransactionDate    time.Time           `json:"transaction_date"`
	IsIncome           bool                `json:"is_income"`
	CategoryConfidence decimal.NullDecimal `json:"category_confidence,omitempty"`
	IsAnomaly          bool                `json:"is_anomaly"`
	AnomalyScore       decimal.NullDecimal `json:"anomaly_score,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// CategoryPrediction is the classifier output for a single transaction.
type CategoryPrediction struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Confidence  float64  `json:"confidence"`
	Reasoning   []string `json:"reasoning"`
}

// UserSpendingProfile accumulates per-user classification statistics. It is a
// soft cache: it can always be rebuilt from the persisted transaction history.
type UserSpendingProfile struct {
	UserID            int64                      `json:"user_id"`
	CategoryFrequency map[string]int             `json:"category_frequency"`
	AverageAmounts    map[string]decimal.Decimal `json:"average_amounts"`
	LastUpdated       time.Time                  `json:"last_updated"`
}

// Clone deep-copies the profile maps so the copy can be read while the
// original keeps being updated.
func (p *UserSpendingProfile) Clone() *UserSpendingProfile {
	return &UserSpendingProfile{
		UserID:            p.UserID,
		CategoryFrequency: maps.Clone(p.CategoryFrequency),
		AverageAmounts:    maps.Clone(p.AverageAmounts),
		LastUpdated:       p.LastUpdated,
	}
}
