package services

import (
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/finsight/backend/src/models"
)

func newTestAnomalyService(store *fakeStore) AnomalyService {
	profiles := NewProfileService(store, cache.New(time.Minute, time.Minute))
	return NewAnomalyService(store, profiles, 90, 2.5)
}

func expenseTx(id int64, amount string, category string, daysAgo int) models.Transaction {
	return models.Transaction{
		ID:              id,
		Amount:          decimal.RequireFromString(amount),
		Category:        category,
		Description:     "tx",
		TransactionDate: time.Now().AddDate(0, 0, -daysAgo),
	}
}

func TestDetectAnomaliesFlagsOutlier(t *testing.T) {
	store := newFakeStore()
	// Seven routine purchases plus one large outlier: with population stddev
	// the outlier sits about 2.65 standard deviations out.
	for i := int64(1); i <= 7; i++ {
		store.transactions = append(store.transactions, expenseTx(i, "-50.00", "Shopping", int(i)))
	}
	store.transactions = append(store.transactions, expenseTx(8, "-500.00", "Shopping", 8))

	svc := newTestAnomalyService(store)
	require.NoError(t, svc.DetectAnomalies(1))

	require.Contains(t, store.anomalyUpdates, int64(8))
	outlier := store.anomalyUpdates[8]
	assert.True(t, outlier.isAnomaly)
	assert.Greater(t, outlier.zScore, 2.5)

	// Routine transactions are evaluated and persisted as non-anomalous.
	routine := store.anomalyUpdates[1]
	assert.False(t, routine.isAnomaly)
	assert.Less(t, routine.zScore, 2.5)
}

func TestDetectAnomaliesDiningSpike(t *testing.T) {
	store := newFakeStore()
	// Ten dining charges with mean 50 and spread 10, then a 150 charge. With
	// the spike included in the window the stats shift, but it still lands
	// about three standard deviations out.
	for i := int64(1); i <= 5; i++ {
		store.transactions = append(store.transactions, expenseTx(i, "-40.00", "Food & Dining", int(i)))
	}
	for i := int64(6); i <= 10; i++ {
		store.transactions = append(store.transactions, expenseTx(i, "-60.00", "Food & Dining", int(i)))
	}
	store.transactions = append(store.transactions, expenseTx(11, "-150.00", "Food & Dining", 11))

	svc := newTestAnomalyService(store)
	require.NoError(t, svc.DetectAnomalies(1))

	require.Contains(t, store.anomalyUpdates, int64(11))
	spike := store.anomalyUpdates[11]
	assert.True(t, spike.isAnomaly)
	assert.InDelta(t, 3.0, spike.zScore, 0.1)
}

func TestDetectAnomaliesRequiresSufficientSample(t *testing.T) {
	store := newFakeStore()
	// Three observations, one extreme: still below the sample threshold.
	store.transactions = []models.Transaction{
		expenseTx(1, "-50.00", "Shopping", 1),
		expenseTx(2, "-50.00", "Shopping", 2),
		expenseTx(3, "-5000.00", "Shopping", 3),
	}

	svc := newTestAnomalyService(store)
	require.NoError(t, svc.DetectAnomalies(1))

	assert.Empty(t, store.anomalyUpdates)
}

func TestDetectAnomaliesZeroSpreadNeverFlags(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 5; i++ {
		store.transactions = append(store.transactions, expenseTx(i, "-15.99", "Entertainment", int(i)))
	}

	svc := newTestAnomalyService(store)
	require.NoError(t, svc.DetectAnomalies(1))

	require.Len(t, store.anomalyUpdates, 5)
	for _, update := range store.anomalyUpdates {
		assert.False(t, update.isAnomaly)
		assert.Zero(t, update.zScore)
	}
}

func TestDetectAnomaliesIgnoresIncome(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 5; i++ {
		tx := expenseTx(i, "4200.00", "Income", int(i))
		tx.IsIncome = true
		store.transactions = append(store.transactions, tx)
	}

	svc := newTestAnomalyService(store)
	require.NoError(t, svc.DetectAnomalies(1))

	assert.Empty(t, store.anomalyUpdates)
}

func TestDetectAnomaliesIgnoresTransactionsOutsideWindow(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 7; i++ {
		store.transactions = append(store.transactions, expenseTx(i, "-50.00", "Shopping", int(i)))
	}
	// The outlier is older than the 90-day window and must not be evaluated.
	store.transactions = append(store.transactions, expenseTx(8, "-500.00", "Shopping", 120))

	svc := newTestAnomalyService(store)
	require.NoError(t, svc.DetectAnomalies(1))

	assert.NotContains(t, store.anomalyUpdates, int64(8))
}
