package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/finsight/backend/src/models"
)

func TestSpendingAnalytics(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.transactions = []models.Transaction{
		{ID: 1, Amount: decimal.RequireFromString("-300.00"), Category: "Food & Dining", TransactionDate: now.AddDate(0, 0, -2)},
		{ID: 2, Amount: decimal.RequireFromString("-100.00"), Category: "Transportation", TransactionDate: now.AddDate(0, 0, -5)},
		{ID: 3, Amount: decimal.RequireFromString("-100.00"), Category: "Food & Dining", TransactionDate: now.AddDate(0, 0, -9)},
		// Income is excluded from the breakdown.
		{ID: 4, Amount: decimal.RequireFromString("4000.00"), Category: "Income", IsIncome: true, TransactionDate: now.AddDate(0, 0, -3)},
		// Outside the 30-day month window.
		{ID: 5, Amount: decimal.RequireFromString("-500.00"), Category: "Shopping", TransactionDate: now.AddDate(0, 0, -60)},
	}

	svc := NewAnalyticsService(store)
	got, err := svc.SpendingAnalytics(1, "month")
	require.NoError(t, err)

	assert.Equal(t, "month", got.Period)
	assert.Equal(t, 3, got.TransactionCount)
	assert.True(t, got.TotalSpending.Equal(decimal.RequireFromString("500.00")))

	require.Len(t, got.Categories, 2)
	// Sorted by amount descending.
	assert.Equal(t, "Food & Dining", got.Categories[0].Category)
	assert.True(t, got.Categories[0].Amount.Equal(decimal.RequireFromString("400.00")))
	assert.InDelta(t, 80.0, got.Categories[0].Percentage, 0.01)
	assert.Equal(t, "Transportation", got.Categories[1].Category)
	assert.InDelta(t, 20.0, got.Categories[1].Percentage, 0.01)
}

func TestSpendingAnalyticsQuarterIncludesOlderTransactions(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.transactions = []models.Transaction{
		{ID: 1, Amount: decimal.RequireFromString("-500.00"), Category: "Shopping", TransactionDate: now.AddDate(0, 0, -60)},
	}

	svc := NewAnalyticsService(store)
	got, err := svc.SpendingAnalytics(1, "quarter")
	require.NoError(t, err)

	assert.Equal(t, "quarter", got.Period)
	assert.Equal(t, 1, got.TransactionCount)
}

func TestSpendingAnalyticsUnknownPeriodDefaultsToMonth(t *testing.T) {
	svc := NewAnalyticsService(newFakeStore())
	got, err := svc.SpendingAnalytics(1, "fortnight")
	require.NoError(t, err)
	assert.Equal(t, "month", got.Period)
	assert.Zero(t, got.TransactionCount)
}

func TestNetWorthHistory(t *testing.T) {
	store := newFakeStore()
	// Newest first, two snapshots in the most recent month: only the newer
	// one per month survives, and the result is returned oldest first.
	store.snapshots = []models.HealthSnapshot{
		{NetWorth: decimal.RequireFromString("9000.00"), CalculatedAt: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
		{NetWorth: decimal.RequireFromString("8900.00"), CalculatedAt: time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)},
		{NetWorth: decimal.RequireFromString("8500.00"), CalculatedAt: time.Date(2026, 7, 18, 0, 0, 0, 0, time.UTC)},
		{NetWorth: decimal.RequireFromString("8100.00"), CalculatedAt: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)},
	}

	svc := NewAnalyticsService(store)
	points, err := svc.NetWorthHistory(1, 6)
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.Equal(t, "2026-06-30", points[0].Date)
	assert.Equal(t, "Jun", points[0].Month)
	assert.Equal(t, "2026-07-18", points[1].Date)
	assert.Equal(t, "2026-08-20", points[2].Date)
	assert.True(t, points[2].NetWorth.Equal(decimal.RequireFromString("9000.00")))
}

func TestNetWorthHistoryEmpty(t *testing.T) {
	svc := NewAnalyticsService(newFakeStore())
	points, err := svc.NetWorthHistory(1, 6)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestFinancialInsightsDiningIncrease(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	// Recent 30 days: 600 dining. Prior 30 days: 400 dining. +50% change.
	store.transactions = []models.Transaction{
		{ID: 1, Amount: decimal.RequireFromString("-600.00"), Category: "Food & Dining", Subcategory: "Restaurants", TransactionDate: now.AddDate(0, 0, -3)},
		{ID: 2, Amount: decimal.RequireFromString("-400.00"), Category: "Food & Dining", Subcategory: "Restaurants", TransactionDate: now.AddDate(0, 0, -45)},
	}

	svc := NewAnalyticsService(store)
	insights, err := svc.FinancialInsights(1)
	require.NoError(t, err)

	require.NotEmpty(t, insights)
	assert.Equal(t, "alert", insights[0].Type)
	assert.Equal(t, "Dining spending is up", insights[0].Title)
	assert.Contains(t, insights[0].Message, "50% more on dining")
}

func TestFinancialInsightsSavingsRateCue(t *testing.T) {
	store := newFakeStore()
	store.snapshots = []models.HealthSnapshot{{
		SavingsRate:  decimal.RequireFromString("24.00"),
		CalculatedAt: time.Now(),
	}}

	svc := NewAnalyticsService(store)
	insights, err := svc.FinancialInsights(1)
	require.NoError(t, err)

	require.Len(t, insights, 1)
	assert.Equal(t, "success", insights[0].Type)
	assert.Equal(t, "Great time to invest", insights[0].Title)
}

func TestDashboardAggregatesAllSections(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.accounts = []models.Account{{ID: 1, AccountName: "Checking", Balance: decimal.RequireFromString("100.00"), IsActive: true}}
	store.goals = []models.Goal{{ID: 1, Name: "Emergency Fund"}}
	store.snapshots = []models.HealthSnapshot{{HealthScore: 72, CalculatedAt: now}}
	store.recommendations = []models.InvestmentRecommendation{
		{ID: 1, Symbol: "VTI", IsActive: true},
		{ID: 2, Symbol: "BND", IsActive: false},
	}
	for i := int64(1); i <= 7; i++ {
		store.transactions = append(store.transactions, expenseTx(i, "-10.00", "Other", int(i)))
	}

	svc := NewAnalyticsService(store)
	got, err := svc.Dashboard(1)
	require.NoError(t, err)

	assert.Len(t, got.Accounts, 1)
	assert.Len(t, got.Goals, 1)
	require.NotNil(t, got.FinancialHealth)
	assert.Equal(t, 72, got.FinancialHealth.HealthScore)
	// Recent transactions are capped at five.
	assert.Len(t, got.RecentTransactions, 5)
	// Only active recommendations appear.
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, "VTI", got.Recommendations[0].Symbol)
}
