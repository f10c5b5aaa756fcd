package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/storage"
)

// SeedService populates a user with a fixed demo data set and runs the full
// scoring pipeline over it. Seeding is deterministic: the same call always
// produces the same accounts, transactions and goals, with dates anchored to
// the current day.
type SeedService struct {
	store          storage.Store
	categorization CategorizationService
	anomalies      AnomalyService
	health         HealthService
	investments    InvestmentService
}

func NewSeedService(store storage.Store, categorization CategorizationService, anomalies AnomalyService, health HealthService, investments InvestmentService) *SeedService {
	return &SeedService{
		store:          store,
		categorization: categorization,
		anomalies:      anomalies,
		health:         health,
		investments:    investments,
	}
}

type seedTransaction struct {
	daysAgo     int
	amount      string
	description string
	isIncome    bool
}

var seedAccounts = []struct {
	accountType string
	name        string
	institution string
	balance     string
}{
	{models.AccountTypeChecking, "Everyday Checking", "First National Bank", "4250.67"},
	{models.AccountTypeSavings, "High-Yield Savings", "First National Bank", "12800.00"},
	{models.AccountTypeCredit, "Rewards Credit Card", "Capital Trust", "-1287.34"},
	{models.AccountTypeInvestment, "Brokerage Account", "Vanguard", "23400.50"},
	{models.AccountTypeSavings, "Vacation Fund", "Ally Bank", "2150.00"},
}

// Transactions land on the checking account except the salary deposits and a
// few card purchases. Amounts repeat enough per category to give the anomaly
// detector a usable sample, with one deliberate outlier.
var seedTransactions = []seedTransaction{
	{2, "4200.00", "ACME CORP PAYROLL DIRECT DEPOSIT", true},
	{32, "4200.00", "ACME CORP PAYROLL DIRECT DEPOSIT", true},
	{62, "4200.00", "ACME CORP PAYROLL DIRECT DEPOSIT", true},

	{1, "-5.75", "STARBUCKS STORE 8821", false},
	{4, "-6.10", "STARBUCKS STORE 8821", false},
	{9, "-5.40", "BLUE BOTTLE COFFEE", false},
	{3, "-84.23", "WHOLE FOODS MARKET", false},
	{10, "-91.57", "TRADER JOES #412", false},
	{17, "-78.12", "KROGER #0021", false},
	{24, "-88.95", "WHOLE FOODS MARKET", false},
	{6, "-42.80", "CHIPOTLE ONLINE", false},
	{13, "-36.50", "THAI BASIL RESTAURANT", false},

	{5, "-48.00", "SHELL OIL 5523", false},
	{19, "-51.25", "CHEVRON STATION", false},
	{33, "-46.75", "SHELL OIL 5523", false},
	{8, "-18.40", "UBER TRIP", false},

	{7, "-129.99", "AMAZON MARKETPLACE", false},
	{21, "-64.30", "TARGET STORE T-1182", false},
	{40, "-89.99", "AMAZON MARKETPLACE", false},
	{23, "-54.99", "AMAZON MARKETPLACE", false},
	{29, "-112.45", "AMAZON MARKETPLACE", false},
	{36, "-75.20", "NIKE STORE", false},
	{49, "-98.60", "AMAZON MARKETPLACE", false},
	{52, "-67.85", "H&M FASHION", false},

	{11, "-15.99", "NETFLIX.COM", false},
	{41, "-15.99", "NETFLIX.COM", false},
	{12, "-10.99", "SPOTIFY USA", false},

	{14, "-1450.00", "OAKWOOD APARTMENTS RENT", false},
	{44, "-1450.00", "OAKWOOD APARTMENTS RENT", false},
	{16, "-94.20", "CITY POWER AND LIGHT", false},
	{46, "-101.75", "CITY POWER AND LIGHT", false},
	{18, "-79.99", "COMCAST INTERNET", false},

	{26, "-35.00", "CITY DENTAL GROUP", false},
	{55, "-25.00", "CVS PHARMACY", false},

	// Outlier: far above the shopping sample mean.
	{15, "-857.40", "BEST BUY FLAGSHIP", false},
}

var seedGoals = []struct {
	name     string
	target   string
	current  string
	goalType string
	months   int
}{
	{"Emergency Fund", "15000.00", "12800.00", "emergency", 8},
	{"House Down Payment", "60000.00", "23400.50", "house", 36},
	{"Japan Trip", "4500.00", "2150.00", "vacation", 10},
}

// SeedDemoData inserts the demo accounts, transactions and goals for the
// user, then runs categorization, anomaly detection, health scoring and
// recommendation generation so the dashboard is fully populated immediately.
func (s *SeedService) SeedDemoData(userID int64) error {
	existing, err := s.store.GetUserAccounts(userID)
	if err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("seeding demo data: user %d already has accounts", userID)
	}

	now := time.Now()
	accountIDs := make([]int64, 0, len(seedAccounts))
	for _, sa := range seedAccounts {
		account := models.Account{
			UserID:          userID,
			AccountType:     sa.accountType,
			AccountName:     sa.name,
			InstitutionName: sa.institution,
			Balance:         decimal.RequireFromString(sa.balance),
			IsActive:        true,
		}
		if err := s.store.CreateAccount(&account); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
		accountIDs = append(accountIDs, account.ID)
	}
	checkingID := accountIDs[0]

	for _, st := range seedTransactions {
		tx := models.Transaction{
			AccountID:       checkingID,
			Amount:          decimal.RequireFromString(st.amount),
			Description:     st.description,
			TransactionDate: now.AddDate(0, 0, -st.daysAgo),
			IsIncome:        st.isIncome,
		}
		if err := s.store.CreateTransaction(&tx); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
	}

	for _, sg := range seedGoals {
		goal := models.Goal{
			UserID:        userID,
			Name:          sg.name,
			TargetAmount:  decimal.RequireFromString(sg.target),
			CurrentAmount: decimal.RequireFromString(sg.current),
			GoalType:      sg.goalType,
		}
		goal.TargetDate.Valid = true
		goal.TargetDate.Time = now.AddDate(0, sg.months, 0)
		if err := s.store.CreateGoal(&goal); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
	}

	processed, err := s.categorization.CategorizeTransactions(userID)
	if err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}
	if err := s.anomalies.DetectAnomalies(userID); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}
	if _, err := s.health.CalculateHealth(userID); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}
	if _, err := s.investments.GenerateRecommendations(userID); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}

	logger.L.Info("Demo data seeded",
		"userID", userID, "accounts", len(accountIDs), "transactions", len(seedTransactions), "categorized", processed)
	return nil
}
