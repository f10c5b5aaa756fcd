package storage

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/username/finsight/backend/src/models"
)

// newTestStore opens an in-memory database with the real schema applied.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	schema, err := os.ReadFile("../../db/migrations/000001_init_schema.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (google_id, email) VALUES ('g-1', 'test@example.com')`)
	require.NoError(t, err)

	return NewSQLiteStore(db)
}

func createTestAccount(t *testing.T, store *SQLiteStore) *models.Account {
	t.Helper()
	account := &models.Account{
		UserID:          1,
		AccountType:     models.AccountTypeChecking,
		AccountName:     "Everyday Checking",
		InstitutionName: "Test Bank",
		Balance:         decimal.RequireFromString("1250.75"),
		IsActive:        true,
	}
	require.NoError(t, store.CreateAccount(account))
	return account
}

func TestAccountRoundTrip(t *testing.T) {
	store := newTestStore(t)
	created := createTestAccount(t, store)

	accounts, err := store.GetUserAccounts(1)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, created.ID, accounts[0].ID)
	assert.Equal(t, "Everyday Checking", accounts[0].AccountName)
	assert.True(t, accounts[0].Balance.Equal(decimal.RequireFromString("1250.75")))
	assert.True(t, accounts[0].IsActive)

	require.NoError(t, store.UpdateAccountBalance(created.ID, 1, decimal.RequireFromString("900.00")))
	accounts, err = store.GetUserAccounts(1)
	require.NoError(t, err)
	assert.True(t, accounts[0].Balance.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, accounts[0].LastSynced.Valid)
}

func TestUpdateAccountBalanceWrongUser(t *testing.T) {
	store := newTestStore(t)
	created := createTestAccount(t, store)

	err := store.UpdateAccountBalance(created.ID, 999, decimal.Zero)
	assert.ErrorIs(t, err, ErrStoreFailed)
}

func TestTransactionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	account := createTestAccount(t, store)

	tx := &models.Transaction{
		AccountID:       account.ID,
		Amount:          decimal.RequireFromString("-42.50"),
		Description:     "COFFEE SHOP",
		Category:        "Food & Dining",
		Subcategory:     "Coffee Shops",
		TransactionDate: time.Now().AddDate(0, 0, -2),
	}
	require.NoError(t, store.CreateTransaction(tx))
	require.NotZero(t, tx.ID)

	require.NoError(t, store.UpdateTransactionCategory(tx.ID, "Food & Dining", "Coffee Shops", 0.874))
	require.NoError(t, store.UpdateTransactionAnomaly(tx.ID, true, 3.117))

	txs, err := store.GetUserTransactions(1, 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	got := txs[0]
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("-42.50")))
	assert.Equal(t, "Food & Dining", got.Category)
	require.True(t, got.CategoryConfidence.Valid)
	// Confidence and z-score are rounded to two places on write.
	assert.True(t, got.CategoryConfidence.Decimal.Equal(decimal.RequireFromString("0.87")))
	assert.True(t, got.IsAnomaly)
	require.True(t, got.AnomalyScore.Valid)
	assert.True(t, got.AnomalyScore.Decimal.Equal(decimal.RequireFromString("3.12")))
}

func TestGetUserTransactionsWindowAndLimit(t *testing.T) {
	store := newTestStore(t)
	account := createTestAccount(t, store)

	for _, daysAgo := range []int{1, 5, 40, 100} {
		tx := &models.Transaction{
			AccountID:       account.ID,
			Amount:          decimal.RequireFromString("-10.00"),
			Description:     "tx",
			Category:        "Other",
			TransactionDate: time.Now().AddDate(0, 0, -daysAgo),
		}
		require.NoError(t, store.CreateTransaction(tx))
	}

	all, err := store.GetUserTransactions(1, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	windowed, err := store.GetUserTransactions(1, 0, 30)
	require.NoError(t, err)
	assert.Len(t, windowed, 2)

	limited, err := store.GetUserTransactions(1, 1, 0)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	// Newest first.
	assert.Equal(t, all[0].ID, limited[0].ID)
}

func TestGoalRoundTrip(t *testing.T) {
	store := newTestStore(t)

	goal := &models.Goal{
		UserID:        1,
		Name:          "Emergency Fund",
		TargetAmount:  decimal.RequireFromString("15000.00"),
		CurrentAmount: decimal.RequireFromString("5000.00"),
		GoalType:      "emergency",
	}
	require.NoError(t, store.CreateGoal(goal))

	require.NoError(t, store.UpdateGoalProgress(goal.ID, 1, decimal.RequireFromString("15000.00"), true))

	goals, err := store.GetUserGoals(1)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].IsCompleted)
	assert.True(t, goals[0].CurrentAmount.Equal(decimal.RequireFromString("15000.00")))
}

func TestHealthSnapshotHistory(t *testing.T) {
	store := newTestStore(t)

	latest, err := store.GetLatestHealthSnapshot(1)
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i, score := range []int{60, 70, 80} {
		snap := &models.HealthSnapshot{
			UserID:              1,
			HealthScore:         score,
			NetWorth:            decimal.NewFromInt(int64(1000 * (i + 1))),
			MonthlyIncome:       decimal.NewFromInt(4000),
			MonthlyExpenses:     decimal.NewFromInt(3000),
			SavingsRate:         decimal.NewFromInt(25),
			DebtToIncomeRatio:   decimal.NewFromInt(10),
			EmergencyFundMonths: decimal.NewFromInt(3),
		}
		require.NoError(t, store.CreateHealthSnapshot(snap))
	}

	latest, err = store.GetLatestHealthSnapshot(1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 80, latest.HealthScore)

	history, err := store.GetHealthSnapshotHistory(1, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 80, history[0].HealthScore)
	assert.Equal(t, 70, history[1].HealthScore)
}

func TestRecommendationLifecycle(t *testing.T) {
	store := newTestStore(t)

	first := &models.InvestmentRecommendation{
		UserID:                1,
		Symbol:                "VTI",
		Name:                  "Vanguard Total Stock Market ETF",
		RecommendedAllocation: decimal.RequireFromString("60"),
		RiskLevel:             models.RiskMedium,
		ExpectedReturn:        "7-9%",
		Description:           "Broad market exposure",
		IsActive:              true,
	}
	require.NoError(t, store.CreateRecommendation(first))

	require.NoError(t, store.DeactivateUserRecommendations(1))

	second := &models.InvestmentRecommendation{
		UserID:                1,
		Symbol:                "BND",
		Name:                  "Vanguard Total Bond Market ETF",
		RecommendedAllocation: decimal.RequireFromString("40"),
		RiskLevel:             models.RiskLow,
		ExpectedReturn:        "3-5%",
		Description:           "Stable income",
		IsActive:              true,
	}
	require.NoError(t, store.CreateRecommendation(second))

	active, err := store.GetUserRecommendations(1, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "BND", active[0].Symbol)

	all, err := store.GetUserRecommendations(1, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
