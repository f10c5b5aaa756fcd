package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/storage"
)

// minCategorySample is the number of observations a category needs before its
// statistics are trusted. Categories at or below this count are skipped.
const minCategorySample = 3

type anomalyService struct {
	store      storage.Store
	profiles   ProfileService
	windowDays int
	zLimit     float64
}

func NewAnomalyService(store storage.Store, profiles ProfileService, windowDays int, zScoreLimit float64) AnomalyService {
	return &anomalyService{
		store:      store,
		profiles:   profiles,
		windowDays: windowDays,
		zLimit:     zScoreLimit,
	}
}

type categoryStats struct {
	amounts []float64
	mean    float64
	stdDev  float64
}

// DetectAnomalies groups expense transactions in the trailing window by
// category, computes per-category mean and population standard deviation of
// absolute amounts, and persists a z-score based flag for every evaluated
// transaction, overwriting prior values.
func (s *anomalyService) DetectAnomalies(userID int64) error {
	txs, err := s.store.GetUserTransactions(userID, 0, s.windowDays)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAnomalyFailed, err)
	}

	// Profile only feeds the human-readable reasoning; its absence is fine.
	var profile *models.UserSpendingProfile
	if s.profiles != nil {
		if p, pErr := s.profiles.Profile(userID); pErr == nil {
			profile = p
		}
	}

	stats := make(map[string]*categoryStats)
	for _, tx := range txs {
		if tx.IsIncome {
			continue
		}
		cs, ok := stats[tx.Category]
		if !ok {
			cs = &categoryStats{}
			stats[tx.Category] = cs
		}
		cs.amounts = append(cs.amounts, tx.Amount.Abs().InexactFloat64())
	}

	for _, cs := range stats {
		if len(cs.amounts) <= minCategorySample {
			continue
		}
		var sum float64
		for _, v := range cs.amounts {
			sum += v
		}
		cs.mean = sum / float64(len(cs.amounts))

		var variance float64
		for _, v := range cs.amounts {
			variance += (v - cs.mean) * (v - cs.mean)
		}
		variance /= float64(len(cs.amounts))
		cs.stdDev = math.Sqrt(variance)
	}

	evaluated := 0
	flagged := 0
	for _, tx := range txs {
		if tx.IsIncome {
			continue
		}
		cs, ok := stats[tx.Category]
		if !ok || len(cs.amounts) <= minCategorySample {
			continue // insufficient sample, not an error
		}

		amount := tx.Amount.Abs().InexactFloat64()

		var zScore float64
		if cs.stdDev > 0 {
			zScore = math.Abs(amount-cs.mean) / cs.stdDev
		}
		isAnomaly := cs.stdDev > 0 && zScore > s.zLimit

		if err := s.store.UpdateTransactionAnomaly(tx.ID, isAnomaly, zScore); err != nil {
			return fmt.Errorf("%w: %v", ErrAnomalyFailed, err)
		}
		evaluated++

		if isAnomaly {
			flagged++
			reasons := anomalyReasons(tx, amount, cs, profile, zScore, s.zLimit)
			logger.L.Info("Anomaly detected",
				"userID", userID,
				"transactionID", tx.ID,
				"description", tx.Description,
				"amount", fmt.Sprintf("%.2f", amount),
				"zScore", fmt.Sprintf("%.2f", zScore),
				"reasons", strings.Join(reasons, ", "))
		}
	}

	logger.L.Info("Anomaly detection completed",
		"userID", userID, "windowDays", s.windowDays, "evaluated", evaluated, "flagged", flagged)
	return nil
}

// anomalyReasons builds the explanation list. The supplementary signals never
// change the binary flag, only the explanation.
func anomalyReasons(tx models.Transaction, amount float64, cs *categoryStats, profile *models.UserSpendingProfile, zScore, zLimit float64) []string {
	var reasons []string
	if zScore > zLimit {
		reasons = append(reasons, fmt.Sprintf("Amount %.1f standard deviations from mean", zScore))
	}
	if amount > cs.mean*3 {
		reasons = append(reasons, fmt.Sprintf("Amount is 3x higher than average for %s", tx.Category))
	}
	if profile != nil {
		if userAvg, ok := profile.AverageAmounts[tx.Category]; ok && !userAvg.IsZero() {
			if decimal.NewFromFloat(amount).GreaterThan(userAvg.Mul(decimal.NewFromFloat(2.5))) {
				reasons = append(reasons, "Amount exceeds user's typical spending by 2.5x")
			}
		}
	}
	return reasons
}
