package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/storage"
)

const recentTransactionLimit = 5

type analyticsService struct {
	store storage.Store
}

func NewAnalyticsService(store storage.Store) AnalyticsService {
	return &analyticsService{store: store}
}

// Dashboard collects accounts, the latest health snapshot, recent
// transactions, goals and active recommendations in a single payload.
func (s *analyticsService) Dashboard(userID int64) (*models.DashboardData, error) {
	accounts, err := s.store.GetUserAccounts(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}
	snapshot, err := s.store.GetLatestHealthSnapshot(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}
	recent, err := s.store.GetUserTransactions(userID, recentTransactionLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}
	goals, err := s.store.GetUserGoals(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}
	recommendations, err := s.store.GetUserRecommendations(userID, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}

	return &models.DashboardData{
		Accounts:           accounts,
		FinancialHealth:    snapshot,
		RecentTransactions: recent,
		Goals:              goals,
		Recommendations:    recommendations,
	}, nil
}

// SpendingAnalytics breaks down expenses by category over the period
// ("month" = trailing 30 days, "quarter" = trailing 90). Categories are
// sorted by amount descending.
func (s *analyticsService) SpendingAnalytics(userID int64, period string) (*models.SpendingAnalytics, error) {
	days := 30
	if period == "quarter" {
		days = 90
	} else {
		period = "month"
	}

	transactions, err := s.store.GetUserTransactions(userID, 0, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}

	totals := make(map[string]decimal.Decimal)
	total := decimal.Zero
	count := 0
	for _, tx := range transactions {
		if !tx.Amount.IsNegative() {
			continue
		}
		abs := tx.Amount.Abs()
		totals[tx.Category] = totals[tx.Category].Add(abs)
		total = total.Add(abs)
		count++
	}

	categories := make([]models.CategorySpend, 0, len(totals))
	for category, amount := range totals {
		pct := 0.0
		if total.IsPositive() {
			pct = amount.Div(total).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		}
		categories = append(categories, models.CategorySpend{
			Category:   category,
			Amount:     amount,
			Percentage: pct,
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Amount.GreaterThan(categories[j].Amount)
	})

	return &models.SpendingAnalytics{
		Period:           period,
		TotalSpending:    total,
		Categories:       categories,
		TransactionCount: count,
	}, nil
}

// NetWorthHistory returns one point per calendar month, taken from the most
// recent persisted health snapshot of that month, oldest first. Months
// without a snapshot produce no point.
func (s *analyticsService) NetWorthHistory(userID int64, months int) ([]models.NetWorthPoint, error) {
	if months <= 0 {
		months = 6
	}

	// Snapshots arrive newest first; a generous limit covers several
	// recalculations per month.
	snapshots, err := s.store.GetHealthSnapshotHistory(userID, months*31)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}

	seen := make(map[string]bool)
	points := make([]models.NetWorthPoint, 0, months)
	for _, snap := range snapshots {
		monthKey := snap.CalculatedAt.Format("2006-01")
		if seen[monthKey] {
			continue
		}
		seen[monthKey] = true
		points = append(points, models.NetWorthPoint{
			Date:     snap.CalculatedAt.Format("2006-01-02"),
			NetWorth: snap.NetWorth,
			Month:    snap.CalculatedAt.Format("Jan"),
		})
		if len(points) == months {
			break
		}
	}

	// Oldest first for charting.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// FinancialInsights derives deterministic observations by comparing the last
// 30 days of spending against the 30 days before, plus a savings-rate cue
// from the latest health snapshot.
func (s *analyticsService) FinancialInsights(userID int64) ([]models.Insight, error) {
	transactions, err := s.store.GetUserTransactions(userID, 0, 60)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}

	const diningCategory = "Food & Dining"
	recentDining, priorDining := periodSpend(transactions, diningCategory, "")
	recentGroceries, priorGroceries := periodSpend(transactions, diningCategory, "Groceries")

	insights := []models.Insight{}

	if priorDining.IsPositive() {
		change := recentDining.Sub(priorDining).Div(priorDining).Mul(decimal.NewFromInt(100))
		if change.GreaterThan(decimal.NewFromInt(20)) {
			insights = append(insights, models.Insight{
				Type:     "alert",
				Title:    "Dining spending is up",
				Message:  fmt.Sprintf("You spent %s%% more on dining in the last 30 days than the month before.", change.Round(0).String()),
				Category: diningCategory,
			})
		} else if change.LessThan(decimal.NewFromInt(-20)) {
			insights = append(insights, models.Insight{
				Type:     "success",
				Title:    "Dining spending is down",
				Message:  fmt.Sprintf("You spent %s%% less on dining in the last 30 days than the month before. Keep it up!", change.Abs().Round(0).String()),
				Category: diningCategory,
			})
		}
	}

	if priorGroceries.IsPositive() {
		change := recentGroceries.Sub(priorGroceries).Div(priorGroceries).Mul(decimal.NewFromInt(100))
		if change.GreaterThan(decimal.NewFromInt(20)) {
			insights = append(insights, models.Insight{
				Type:     "info",
				Title:    "Grocery spending is up",
				Message:  fmt.Sprintf("Grocery spending rose %s%% over the previous month. Review recent purchases for one-off items.", change.Round(0).String()),
				Category: diningCategory,
			})
		}
	}

	snapshot, err := s.store.GetLatestHealthSnapshot(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyticsFailed, err)
	}
	if snapshot != nil && snapshot.SavingsRate.GreaterThanOrEqual(decimal.NewFromInt(20)) {
		insights = append(insights, models.Insight{
			Type:     "success",
			Title:    "Great time to invest",
			Message:  "Your savings rate is above 20%. Consider putting the surplus to work in your recommended portfolio.",
			Category: "Investments",
		})
	}

	return insights, nil
}

// periodSpend splits the trailing 60 days of expenses into the most recent 30
// and the 30 before, summing absolute amounts for the given category and
// optional subcategory. The 60-day fetch already bounds the older edge.
func periodSpend(transactions []models.Transaction, category, subcategory string) (recent, prior decimal.Decimal) {
	if len(transactions) == 0 {
		return decimal.Zero, decimal.Zero
	}
	// Transactions arrive newest first; the split point is 30 days before the
	// newest one rather than wall-clock now, so stale demo data still splits.
	cutoff := transactions[0].TransactionDate.AddDate(0, 0, -30)

	for _, tx := range transactions {
		if !tx.Amount.IsNegative() || tx.Category != category {
			continue
		}
		if subcategory != "" && !strings.EqualFold(tx.Subcategory, subcategory) {
			continue
		}
		if tx.TransactionDate.After(cutoff) {
			recent = recent.Add(tx.Amount.Abs())
		} else {
			prior = prior.Add(tx.Amount.Abs())
		}
	}
	return recent, prior
}
