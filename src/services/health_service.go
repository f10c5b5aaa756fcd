package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/storage"
)

type healthService struct {
	store        storage.Store
	creditScores CreditScoreSource
}

func NewHealthService(store storage.Store, creditScores CreditScoreSource) HealthService {
	return &healthService{
		store:        store,
		creditScores: creditScores,
	}
}

// CalculateHealth gathers the user's account and transaction state, computes
// the score breakdown, and appends an immutable snapshot. History is never
// overwritten.
func (s *healthService) CalculateHealth(userID int64) (*models.HealthScoreBreakdown, error) {
	metrics, err := s.gatherMetrics(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHealthFailed, err)
	}

	breakdown := ScoreBreakdown(*metrics)

	snapshot := &models.HealthSnapshot{
		UserID:              userID,
		HealthScore:         breakdown.TotalScore,
		NetWorth:            metrics.NetWorth.Round(2),
		MonthlyIncome:       metrics.MonthlyIncome.Round(2),
		MonthlyExpenses:     metrics.MonthlyExpenses.Round(2),
		SavingsRate:         decimal.NewFromFloat(metrics.SavingsRate).Round(2),
		DebtToIncomeRatio:   decimal.NewFromFloat(metrics.DebtToIncomeRatio).Round(2),
		EmergencyFundMonths: decimal.NewFromFloat(metrics.EmergencyFundMonths).Round(1),
		CreditScore:         metrics.CreditScore,
	}
	if err := s.store.CreateHealthSnapshot(snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHealthFailed, err)
	}

	logger.L.Info("Financial health calculated",
		"userID", userID, "score", breakdown.TotalScore, "netWorth", snapshot.NetWorth.String())
	return &breakdown, nil
}

func (s *healthService) gatherMetrics(userID int64) (*models.HealthMetrics, error) {
	accounts, err := s.store.GetUserAccounts(userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.GetUserTransactions(userID, 0, 90)
	if err != nil {
		return nil, err
	}

	// Net worth: credit balances are liabilities and subtract as absolute
	// values, since the stored sign may already be negative.
	netWorth := decimal.Zero
	totalDebt := decimal.Zero
	emergencyFund := decimal.Zero
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		switch a.AccountType {
		case models.AccountTypeCredit:
			netWorth = netWorth.Sub(a.Balance.Abs())
			totalDebt = totalDebt.Add(a.Balance.Abs())
		case models.AccountTypeChecking, models.AccountTypeSavings:
			netWorth = netWorth.Add(a.Balance)
			emergencyFund = emergencyFund.Add(a.Balance)
		default:
			netWorth = netWorth.Add(a.Balance)
		}
	}

	// Income and expense rates come from the trailing 30 days only.
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	monthlyIncome := decimal.Zero
	monthlyExpenses := decimal.Zero
	for _, tx := range txs {
		if tx.TransactionDate.Before(thirtyDaysAgo) {
			continue
		}
		if tx.IsIncome {
			monthlyIncome = monthlyIncome.Add(tx.Amount)
		} else {
			monthlyExpenses = monthlyExpenses.Add(tx.Amount)
		}
	}
	monthlyExpenses = monthlyExpenses.Abs()

	// Ratio guards: zero income or zero expenses short-circuit to 0.
	savingsRate := 0.0
	debtToIncomeRatio := 0.0
	if monthlyIncome.IsPositive() {
		savingsRate = monthlyIncome.Sub(monthlyExpenses).Div(monthlyIncome).InexactFloat64() * 100
		annualIncome := monthlyIncome.Mul(decimal.NewFromInt(12))
		debtToIncomeRatio = totalDebt.Div(annualIncome).InexactFloat64() * 100
	}
	emergencyFundMonths := 0.0
	if monthlyExpenses.IsPositive() {
		emergencyFundMonths = emergencyFund.Div(monthlyExpenses).InexactFloat64()
	}

	var creditScore sql.NullInt64
	if s.creditScores != nil {
		score, err := s.creditScores.CreditScore(userID)
		if err != nil {
			// Credit score is optional; treat a read failure as absent.
			logger.L.Warn("Credit score unavailable", "userID", userID, "error", err)
		} else if score != nil {
			creditScore = sql.NullInt64{Int64: int64(*score), Valid: true}
		}
	}

	return &models.HealthMetrics{
		NetWorth:            netWorth,
		MonthlyIncome:       monthlyIncome,
		MonthlyExpenses:     monthlyExpenses,
		SavingsRate:         savingsRate,
		DebtToIncomeRatio:   debtToIncomeRatio,
		EmergencyFundMonths: emergencyFundMonths,
		CreditScore:         creditScore,
	}, nil
}

// ScoreBreakdown is the pure scoring function over the derived metrics. The
// five sub-scores always sum to the total, which stays in [0, 100].
func ScoreBreakdown(metrics models.HealthMetrics) models.HealthScoreBreakdown {
	var recommendations []string

	// Savings rate score (0-25 points)
	savingsScore := 0
	switch {
	case metrics.SavingsRate >= 20:
		savingsScore = 25
	case metrics.SavingsRate >= 15:
		savingsScore = 20
	case metrics.SavingsRate >= 10:
		savingsScore = 15
	case metrics.SavingsRate >= 5:
		savingsScore = 10
	case metrics.SavingsRate > 0:
		savingsScore = 5
	}
	if savingsScore < 15 {
		recommendations = append(recommendations, "Increase your savings rate to at least 15% for better financial health")
	}

	// Debt score (0-25 points)
	debtScore := 25
	switch {
	case metrics.DebtToIncomeRatio > 40:
		debtScore = 0
		recommendations = append(recommendations, "Your debt-to-income ratio is high. Consider debt consolidation or payment strategies")
	case metrics.DebtToIncomeRatio > 30:
		debtScore = 10
		recommendations = append(recommendations, "Work on reducing your debt-to-income ratio below 30%")
	case metrics.DebtToIncomeRatio > 20:
		debtScore = 15
	case metrics.DebtToIncomeRatio > 10:
		debtScore = 20
	}

	// Emergency fund score (0-25 points)
	emergencyFundScore := 0
	switch {
	case metrics.EmergencyFundMonths >= 6:
		emergencyFundScore = 25
	case metrics.EmergencyFundMonths >= 3:
		emergencyFundScore = 20
	case metrics.EmergencyFundMonths >= 1:
		emergencyFundScore = 15
	case metrics.EmergencyFundMonths >= 0.5:
		emergencyFundScore = 10
	case metrics.EmergencyFundMonths > 0:
		emergencyFundScore = 5
	}
	if emergencyFundScore < 20 {
		recommendations = append(recommendations, "Build an emergency fund covering 3-6 months of expenses")
	}

	// Spending score (0-15 points), from the expense-to-income ratio.
	spendingScore := 15
	expenseRatio := 100.0
	if metrics.MonthlyIncome.IsPositive() {
		expenseRatio = metrics.MonthlyExpenses.Div(metrics.MonthlyIncome).InexactFloat64() * 100
	}
	switch {
	case expenseRatio > 95:
		spendingScore = 0
		recommendations = append(recommendations, "Your expenses are too high relative to income. Create a budget to reduce spending")
	case expenseRatio > 85:
		spendingScore = 5
		recommendations = append(recommendations, "Consider reducing discretionary spending to improve your financial health")
	case expenseRatio > 75:
		spendingScore = 10
	}

	// Credit score (0-10 points); absent credit score contributes nothing.
	creditScore := 0
	if metrics.CreditScore.Valid {
		switch {
		case metrics.CreditScore.Int64 >= 800:
			creditScore = 10
		case metrics.CreditScore.Int64 >= 740:
			creditScore = 8
		case metrics.CreditScore.Int64 >= 670:
			creditScore = 6
		case metrics.CreditScore.Int64 >= 580:
			creditScore = 4
		default:
			creditScore = 2
			recommendations = append(recommendations, "Work on improving your credit score through timely payments and debt reduction")
		}
	}

	totalScore := savingsScore + debtScore + emergencyFundScore + spendingScore + creditScore

	// Leading summary message by overall band.
	var summary string
	switch {
	case totalScore >= 85:
		summary = "Excellent financial health! Consider advanced investment strategies"
	case totalScore >= 70:
		summary = "Good financial health. Focus on optimizing your investment portfolio"
	case totalScore >= 50:
		summary = "Fair financial health. Prioritize building emergency fund and reducing debt"
	default:
		summary = "Financial health needs improvement. Focus on budgeting and debt reduction"
	}
	recommendations = append([]string{summary}, recommendations...)

	return models.HealthScoreBreakdown{
		TotalScore:         totalScore,
		SavingsScore:       savingsScore,
		DebtScore:          debtScore,
		EmergencyFundScore: emergencyFundScore,
		SpendingScore:      spendingScore,
		CreditScore:        creditScore,
		Metrics:            metrics,
		Recommendations:    recommendations,
	}
}

// GetHealthInsights derives short guidance messages from the latest snapshot.
// Missing data degrades to a "complete your profile" message.
func (s *healthService) GetHealthInsights(userID int64) ([]string, error) {
	snapshot, err := s.store.GetLatestHealthSnapshot(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHealthFailed, err)
	}
	if snapshot == nil {
		return []string{"Complete your financial profile to get personalized insights"}, nil
	}

	var insights []string
	savingsRate := snapshot.SavingsRate.InexactFloat64()
	debtRatio := snapshot.DebtToIncomeRatio.InexactFloat64()
	emergencyMonths := snapshot.EmergencyFundMonths.InexactFloat64()

	if savingsRate < 10 {
		insights = append(insights, fmt.Sprintf("Your savings rate is %.1f%%. Try to increase it to at least 15%% by reducing unnecessary expenses.", savingsRate))
	} else if savingsRate > 20 {
		insights = append(insights, fmt.Sprintf("Excellent savings rate of %.1f%%! Consider investing the excess in diversified portfolios.", savingsRate))
	}

	if debtRatio > 30 {
		insights = append(insights, fmt.Sprintf("Your debt-to-income ratio is %.1f%%. Focus on paying down high-interest debt first.", debtRatio))
	}

	if emergencyMonths < 3 {
		needed := decimal.NewFromFloat(3 - emergencyMonths).Mul(snapshot.MonthlyExpenses)
		insights = append(insights, fmt.Sprintf("You need $%s more for a 3-month emergency fund. Consider automating savings transfers.", needed.Round(0).String()))
	}

	return insights, nil
}
