package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/storage"
)

const profileCacheKey = "spending_profile_user_%d"

// profileService keeps per-user spending profiles in an injected cache keyed
// strictly by user id. The cache is soft: a miss rebuilds the profile from
// the persisted transaction history, so losing it is never a correctness
// problem.
type profileService struct {
	store storage.Store
	cache *cache.Cache

	mu sync.Mutex // guards the canonical cached profiles and their maps
}

func NewProfileService(store storage.Store, profileCache *cache.Cache) ProfileService {
	return &profileService{
		store: store,
		cache: profileCache,
	}
}

// Profile returns a snapshot copy. The canonical profile stays private to the
// service so concurrent RecordObservation calls never race a caller reading
// the maps.
func (s *profileService) Profile(userID int64) (*models.UserSpendingProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.canonical(userID)
	if err != nil {
		return nil, err
	}
	return profile.Clone(), nil
}

// canonical returns the cached profile, rebuilding on a miss. Callers must
// hold mu.
func (s *profileService) canonical(userID int64) (*models.UserSpendingProfile, error) {
	key := fmt.Sprintf(profileCacheKey, userID)
	if cached, found := s.cache.Get(key); found {
		return cached.(*models.UserSpendingProfile), nil
	}

	profile, err := s.rebuild(userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, profile, cache.DefaultExpiration)
	return profile, nil
}

// RecordObservation bumps the category frequency and folds the amount into
// the rolling average using the incremental mean formula.
func (s *profileService) RecordObservation(userID int64, category string, absAmount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.canonical(userID)
	if err != nil {
		// Profile updates are best-effort; classification must not block.
		logger.L.Warn("Skipping spending profile update", "userID", userID, "error", err)
		return
	}

	profile.CategoryFrequency[category]++
	n := int64(profile.CategoryFrequency[category])

	oldAvg, ok := profile.AverageAmounts[category]
	if !ok {
		oldAvg = decimal.Zero
	}
	// newAvg = (oldAvg*(n-1) + amount) / n
	count := decimal.NewFromInt(n)
	profile.AverageAmounts[category] = oldAvg.Mul(count.Sub(decimal.NewFromInt(1))).Add(absAmount).Div(count)
	profile.LastUpdated = time.Now()

	s.cache.Set(fmt.Sprintf(profileCacheKey, userID), profile, cache.DefaultExpiration)
}

func (s *profileService) Invalidate(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(fmt.Sprintf(profileCacheKey, userID))
}

// rebuild recomputes the profile from the full classified transaction history.
func (s *profileService) rebuild(userID int64) (*models.UserSpendingProfile, error) {
	txs, err := s.store.GetUserTransactions(userID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("rebuilding spending profile: %w", err)
	}

	profile := &models.UserSpendingProfile{
		UserID:            userID,
		CategoryFrequency: make(map[string]int),
		AverageAmounts:    make(map[string]decimal.Decimal),
		LastUpdated:       time.Now(),
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		profile.CategoryFrequency[tx.Category]++
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount.Abs())
	}
	for category, total := range totals {
		profile.AverageAmounts[category] = total.Div(decimal.NewFromInt(int64(profile.CategoryFrequency[category])))
	}

	logger.L.Debug("Spending profile rebuilt from transaction history",
		"userID", userID, "categories", len(profile.CategoryFrequency), "transactions", len(txs))
	return profile, nil
}
