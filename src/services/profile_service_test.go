package services

import (
	"sync"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/finsight/backend/src/models"
)

func TestProfileRebuildsFromHistory(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.transactions = []models.Transaction{
		{ID: 1, Amount: decimal.RequireFromString("-10.00"), Category: "Food & Dining", TransactionDate: now},
		{ID: 2, Amount: decimal.RequireFromString("-30.00"), Category: "Food & Dining", TransactionDate: now},
		{ID: 3, Amount: decimal.RequireFromString("-50.00"), Category: "Transportation", TransactionDate: now},
	}

	svc := NewProfileService(store, cache.New(time.Minute, time.Minute))
	profile, err := svc.Profile(1)
	require.NoError(t, err)

	assert.Equal(t, 2, profile.CategoryFrequency["Food & Dining"])
	assert.Equal(t, 1, profile.CategoryFrequency["Transportation"])
	assert.True(t, profile.AverageAmounts["Food & Dining"].Equal(decimal.RequireFromString("20.00")))
	assert.True(t, profile.AverageAmounts["Transportation"].Equal(decimal.RequireFromString("50.00")))
}

func TestRecordObservationIncrementalMean(t *testing.T) {
	svc := NewProfileService(newFakeStore(), cache.New(time.Minute, time.Minute))

	svc.RecordObservation(1, "Shopping", decimal.RequireFromString("10.00"))
	svc.RecordObservation(1, "Shopping", decimal.RequireFromString("20.00"))
	svc.RecordObservation(1, "Shopping", decimal.RequireFromString("60.00"))

	profile, err := svc.Profile(1)
	require.NoError(t, err)

	assert.Equal(t, 3, profile.CategoryFrequency["Shopping"])
	assert.True(t, profile.AverageAmounts["Shopping"].Equal(decimal.RequireFromString("30.00")),
		"average = %s", profile.AverageAmounts["Shopping"])
}

func TestProfileReturnsIndependentCopy(t *testing.T) {
	svc := NewProfileService(newFakeStore(), cache.New(time.Minute, time.Minute))
	svc.RecordObservation(1, "Shopping", decimal.RequireFromString("10.00"))

	first, err := svc.Profile(1)
	require.NoError(t, err)
	first.CategoryFrequency["Shopping"] = 99
	first.AverageAmounts["Shopping"] = decimal.Zero

	second, err := svc.Profile(1)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CategoryFrequency["Shopping"])
	assert.True(t, second.AverageAmounts["Shopping"].Equal(decimal.RequireFromString("10.00")))
}

func TestRecordObservationConcurrentWithReads(t *testing.T) {
	svc := NewProfileService(newFakeStore(), cache.New(time.Minute, time.Minute))

	// Warm the cache so every goroutine hits the same canonical entry.
	_, err := svc.Profile(1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				svc.RecordObservation(1, "Shopping", decimal.RequireFromString("10.00"))
				profile, err := svc.Profile(1)
				if err != nil {
					continue
				}
				_ = profile.CategoryFrequency["Shopping"]
				_ = profile.AverageAmounts["Shopping"]
			}
		}()
	}
	wg.Wait()

	profile, err := svc.Profile(1)
	require.NoError(t, err)
	assert.Equal(t, 200, profile.CategoryFrequency["Shopping"])
	assert.True(t, profile.AverageAmounts["Shopping"].Equal(decimal.RequireFromString("10.00")))
}

func TestInvalidateForcesRebuild(t *testing.T) {
	store := newFakeStore()
	svc := NewProfileService(store, cache.New(time.Minute, time.Minute))

	svc.RecordObservation(1, "Shopping", decimal.RequireFromString("10.00"))
	profile, err := svc.Profile(1)
	require.NoError(t, err)
	require.Equal(t, 1, profile.CategoryFrequency["Shopping"])

	// The store has no transactions, so a rebuild yields an empty profile.
	svc.Invalidate(1)
	profile, err = svc.Profile(1)
	require.NoError(t, err)
	assert.Empty(t, profile.CategoryFrequency)
}
