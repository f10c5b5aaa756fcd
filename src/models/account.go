package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Account types as stored in the accounts table.
const (
	AccountTypeChecking   = "checking"
	AccountTypeSavings    = "savings"
	AccountTypeCredit     = "credit"
	AccountTypeInvestment = "investment"
)

// Account is a bank or brokerage account owned by a user. Credit account
// balances represent liabilities regardless of stored sign.
type Account struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	AccountType     string          `json:"account_type"`
	AccountName     string          `json:"account_name"`
	InstitutionName string          `json:"institution_name"`
	Balance         decimal.Decimal `json:"balance"`
	IsActive        bool            `json:"is_active"`
	LastSynced      sql.NullTime    `json:"last_synced,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Goal is a user-defined savings target.
type Goal struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetDate    sql.NullTime    `json:"target_date,omitempty"`
	GoalType      string          `json:"goal_type"` // emergency, house, retirement, vacation, ...
	IsCompleted   bool            `json:"is_completed"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
