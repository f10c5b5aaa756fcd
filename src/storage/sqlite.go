package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

// SQLiteStore implements Store against the application sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreFailed, op, err)
}

// --- Account operations ---

func (s *SQLiteStore) GetUserAccounts(userID int64) ([]models.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, account_type, account_name, institution_name, balance,
		       is_active, last_synced, created_at, updated_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return nil, storeErr("query accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.AccountType, &a.AccountName, &a.InstitutionName,
			&a.Balance, &a.IsActive, &a.LastSynced, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, storeErr("scan account", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate accounts", err)
	}
	return accounts, nil
}

func (s *SQLiteStore) CreateAccount(a *models.Account) error {
	res, err := s.db.Exec(`
		INSERT INTO accounts (user_id, account_type, account_name, institution_name, balance, is_active, last_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.AccountType, a.AccountName, a.InstitutionName, a.Balance, a.IsActive, a.LastSynced)
	if err != nil {
		return storeErr("insert account", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return storeErr("account id", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateAccountBalance(accountID, userID int64, balance decimal.Decimal) error {
	res, err := s.db.Exec(`
		UPDATE accounts
		SET balance = ?, last_synced = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`, balance, accountID, userID)
	if err != nil {
		return storeErr("update balance", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storeErr("update balance", sql.ErrNoRows)
	}
	return nil
}

// --- Transaction operations ---

func (s *SQLiteStore) GetUserTransactions(userID int64, limit, days int) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.amount, t.description, t.category,
		       COALESCE(t.subcategory, ''), t.transaction_date, t.is_income,
		       t.category_confidence, t.is_anomaly, t.anomaly_score, t.created_at
		FROM transactions t
		INNER JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = ?`
	args := []interface{}{userID}

	if days > 0 {
		query += ` AND t.transaction_date >= ?`
		args = append(args, time.Now().AddDate(0, 0, -days))
	}
	query += ` ORDER BY t.transaction_date DESC, t.id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storeErr("query transactions", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Description, &t.Category,
			&t.Subcategory, &t.TransactionDate, &t.IsIncome,
			&t.CategoryConfidence, &t.IsAnomaly, &t.AnomalyScore, &t.CreatedAt); err != nil {
			return nil, storeErr("scan transaction", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate transactions", err)
	}
	return txs, nil
}

func (s *SQLiteStore) CreateTransaction(t *models.Transaction) error {
	var subcategory sql.NullString
	if t.Subcategory != "" {
		subcategory = sql.NullString{String: t.Subcategory, Valid: true}
	}
	if t.Category == "" {
		t.Category = "Other"
	}
	res, err := s.db.Exec(`
		INSERT INTO transactions (account_id, amount, description, category, subcategory,
		                          transaction_date, is_income, category_confidence, is_anomaly, anomaly_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.Amount, t.Description, t.Category, subcategory,
		t.TransactionDate, t.IsIncome, t.CategoryConfidence, t.IsAnomaly, t.AnomalyScore)
	if err != nil {
		return storeErr("insert transaction", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return storeErr("transaction id", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateTransactionCategory(txID int64, category, subcategory string, confidence float64) error {
	conf := decimal.NewFromFloat(confidence).Round(2)
	_, err := s.db.Exec(`
		UPDATE transactions SET category = ?, subcategory = ?, category_confidence = ?
		WHERE id = ?`, category, subcategory, conf, txID)
	if err != nil {
		return storeErr("update category", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateTransactionAnomaly(txID int64, isAnomaly bool, zScore float64) error {
	score := decimal.NewFromFloat(zScore).Round(2)
	_, err := s.db.Exec(`
		UPDATE transactions SET is_anomaly = ?, anomaly_score = ?
		WHERE id = ?`, isAnomaly, score, txID)
	if err != nil {
		return storeErr("update anomaly", err)
	}
	return nil
}

// --- Goal operations ---

func (s *SQLiteStore) GetUserGoals(userID int64) ([]models.Goal, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, target_amount, current_amount, target_date,
		       goal_type, is_completed, created_at, updated_at
		FROM goals
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return nil, storeErr("query goals", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
			&g.TargetDate, &g.GoalType, &g.IsCompleted, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, storeErr("scan goal", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate goals", err)
	}
	return goals, nil
}

func (s *SQLiteStore) CreateGoal(g *models.Goal) error {
	res, err := s.db.Exec(`
		INSERT INTO goals (user_id, name, target_amount, current_amount, target_date, goal_type, is_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.TargetDate, g.GoalType, g.IsCompleted)
	if err != nil {
		return storeErr("insert goal", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return storeErr("goal id", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateGoalProgress(goalID, userID int64, current decimal.Decimal, isCompleted bool) error {
	res, err := s.db.Exec(`
		UPDATE goals SET current_amount = ?, is_completed = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`, current, isCompleted, goalID, userID)
	if err != nil {
		return storeErr("update goal", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storeErr("update goal", sql.ErrNoRows)
	}
	return nil
}

// --- Financial health operations ---

func (s *SQLiteStore) CreateHealthSnapshot(snap *models.HealthSnapshot) error {
	res, err := s.db.Exec(`
		INSERT INTO financial_health (user_id, health_score, net_worth, monthly_income, monthly_expenses,
		                              savings_rate, debt_to_income_ratio, emergency_fund_months, credit_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.UserID, snap.HealthScore, snap.NetWorth, snap.MonthlyIncome, snap.MonthlyExpenses,
		snap.SavingsRate, snap.DebtToIncomeRatio, snap.EmergencyFundMonths, snap.CreditScore)
	if err != nil {
		return storeErr("insert snapshot", err)
	}
	snap.ID, err = res.LastInsertId()
	if err != nil {
		return storeErr("snapshot id", err)
	}
	return nil
}

func (s *SQLiteStore) GetLatestHealthSnapshot(userID int64) (*models.HealthSnapshot, error) {
	var snap models.HealthSnapshot
	err := s.db.QueryRow(`
		SELECT id, user_id, health_score, net_worth, monthly_income, monthly_expenses,
		       savings_rate, debt_to_income_ratio, emergency_fund_months, credit_score, calculated_at
		FROM financial_health
		WHERE user_id = ?
		ORDER BY calculated_at DESC, id DESC
		LIMIT 1`, userID).
		Scan(&snap.ID, &snap.UserID, &snap.HealthScore, &snap.NetWorth, &snap.MonthlyIncome,
			&snap.MonthlyExpenses, &snap.SavingsRate, &snap.DebtToIncomeRatio,
			&snap.EmergencyFundMonths, &snap.CreditScore, &snap.CalculatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("query latest snapshot", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) GetHealthSnapshotHistory(userID int64, limit int) ([]models.HealthSnapshot, error) {
	query := `
		SELECT id, user_id, health_score, net_worth, monthly_income, monthly_expenses,
		       savings_rate, debt_to_income_ratio, emergency_fund_months, credit_score, calculated_at
		FROM financial_health
		WHERE user_id = ?
		ORDER BY calculated_at DESC, id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storeErr("query snapshot history", err)
	}
	defer rows.Close()

	snaps := []models.HealthSnapshot{}
	for rows.Next() {
		var snap models.HealthSnapshot
		if err := rows.Scan(&snap.ID, &snap.UserID, &snap.HealthScore, &snap.NetWorth, &snap.MonthlyIncome,
			&snap.MonthlyExpenses, &snap.SavingsRate, &snap.DebtToIncomeRatio,
			&snap.EmergencyFundMonths, &snap.CreditScore, &snap.CalculatedAt); err != nil {
			return nil, storeErr("scan snapshot", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate snapshots", err)
	}
	return snaps, nil
}

// --- Investment recommendation operations ---

func (s *SQLiteStore) GetUserRecommendations(userID int64, activeOnly bool) ([]models.InvestmentRecommendation, error) {
	query := `
		SELECT id, user_id, symbol, name, recommended_allocation, risk_level,
		       expected_return, description, is_active, created_at
		FROM investment_recommendations
		WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, storeErr("query recommendations", err)
	}
	defer rows.Close()

	recs := []models.InvestmentRecommendation{}
	for rows.Next() {
		var r models.InvestmentRecommendation
		if err := rows.Scan(&r.ID, &r.UserID, &r.Symbol, &r.Name, &r.RecommendedAllocation,
			&r.RiskLevel, &r.ExpectedReturn, &r.Description, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, storeErr("scan recommendation", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate recommendations", err)
	}
	return recs, nil
}

func (s *SQLiteStore) CreateRecommendation(r *models.InvestmentRecommendation) error {
	res, err := s.db.Exec(`
		INSERT INTO investment_recommendations (user_id, symbol, name, recommended_allocation,
		                                        risk_level, expected_return, description, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Symbol, r.Name, r.RecommendedAllocation, r.RiskLevel,
		r.ExpectedReturn, r.Description, r.IsActive)
	if err != nil {
		return storeErr("insert recommendation", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return storeErr("recommendation id", err)
	}
	return nil
}

func (s *SQLiteStore) DeactivateUserRecommendations(userID int64) error {
	_, err := s.db.Exec(`UPDATE investment_recommendations SET is_active = 0 WHERE user_id = ?`, userID)
	if err != nil {
		return storeErr("deactivate recommendations", err)
	}
	return nil
}
