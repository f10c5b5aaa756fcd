package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

// fakeStore is an in-memory Store for service tests. Slices are expected to
// be ordered newest first, matching the real queries.
type fakeStore struct {
	accounts        []models.Account
	transactions    []models.Transaction
	goals           []models.Goal
	snapshots       []models.HealthSnapshot
	recommendations []models.InvestmentRecommendation

	forcedErr error

	categoryUpdates map[int64]categoryUpdate
	anomalyUpdates  map[int64]anomalyUpdate
	deactivations   int
}

type categoryUpdate struct {
	category    string
	subcategory string
	confidence  float64
}

type anomalyUpdate struct {
	isAnomaly bool
	zScore    float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categoryUpdates: make(map[int64]categoryUpdate),
		anomalyUpdates:  make(map[int64]anomalyUpdate),
	}
}

func (f *fakeStore) GetUserAccounts(userID int64) ([]models.Account, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.accounts, nil
}

func (f *fakeStore) CreateAccount(a *models.Account) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}
	a.ID = int64(len(f.accounts) + 1)
	f.accounts = append(f.accounts, *a)
	return nil
}

func (f *fakeStore) UpdateAccountBalance(accountID, userID int64, balance decimal.Decimal) error {
	for i := range f.accounts {
		if f.accounts[i].ID == accountID {
			f.accounts[i].Balance = balance
		}
	}
	return nil
}

func (f *fakeStore) GetUserTransactions(userID int64, limit, days int) ([]models.Transaction, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	var out []models.Transaction
	var cutoff time.Time
	if days > 0 {
		cutoff = time.Now().AddDate(0, 0, -days)
	}
	for _, tx := range f.transactions {
		if days > 0 && tx.TransactionDate.Before(cutoff) {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) CreateTransaction(t *models.Transaction) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}
	t.ID = int64(len(f.transactions) + 1)
	f.transactions = append([]models.Transaction{*t}, f.transactions...)
	return nil
}

func (f *fakeStore) UpdateTransactionCategory(txID int64, category, subcategory string, confidence float64) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}
	f.categoryUpdates[txID] = categoryUpdate{category, subcategory, confidence}
	for i := range f.transactions {
		if f.transactions[i].ID == txID {
			f.transactions[i].Category = category
			f.transactions[i].Subcategory = subcategory
			f.transactions[i].CategoryConfidence = decimal.NewNullDecimal(decimal.NewFromFloat(confidence))
		}
	}
	return nil
}

func (f *fakeStore) UpdateTransactionAnomaly(txID int64, isAnomaly bool, zScore float64) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}
	f.anomalyUpdates[txID] = anomalyUpdate{isAnomaly, zScore}
	return nil
}

func (f *fakeStore) GetUserGoals(userID int64) ([]models.Goal, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.goals, nil
}

func (f *fakeStore) CreateGoal(g *models.Goal) error {
	g.ID = int64(len(f.goals) + 1)
	f.goals = append(f.goals, *g)
	return nil
}

func (f *fakeStore) UpdateGoalProgress(goalID, userID int64, current decimal.Decimal, isCompleted bool) error {
	for i := range f.goals {
		if f.goals[i].ID == goalID {
			f.goals[i].CurrentAmount = current
			f.goals[i].IsCompleted = isCompleted
		}
	}
	return nil
}

func (f *fakeStore) CreateHealthSnapshot(s *models.HealthSnapshot) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}
	s.ID = int64(len(f.snapshots) + 1)
	if s.CalculatedAt.IsZero() {
		s.CalculatedAt = time.Now()
	}
	f.snapshots = append([]models.HealthSnapshot{*s}, f.snapshots...)
	return nil
}

func (f *fakeStore) GetLatestHealthSnapshot(userID int64) (*models.HealthSnapshot, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	if len(f.snapshots) == 0 {
		return nil, nil
	}
	snap := f.snapshots[0]
	return &snap, nil
}

func (f *fakeStore) GetHealthSnapshotHistory(userID int64, limit int) ([]models.HealthSnapshot, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	if limit > 0 && len(f.snapshots) > limit {
		return f.snapshots[:limit], nil
	}
	return f.snapshots, nil
}

func (f *fakeStore) GetUserRecommendations(userID int64, activeOnly bool) ([]models.InvestmentRecommendation, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	if !activeOnly {
		return f.recommendations, nil
	}
	var out []models.InvestmentRecommendation
	for _, rec := range f.recommendations {
		if rec.IsActive {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateRecommendation(r *models.InvestmentRecommendation) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}
	r.ID = int64(len(f.recommendations) + 1)
	f.recommendations = append(f.recommendations, *r)
	return nil
}

func (f *fakeStore) DeactivateUserRecommendations(userID int64) error {
	if f.forcedErr != nil {
		return f.forcedErr
	}
	f.deactivations++
	for i := range f.recommendations {
		f.recommendations[i].IsActive = false
	}
	return nil
}
