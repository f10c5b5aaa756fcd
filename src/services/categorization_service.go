package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/storage"
)

type categorizationService struct {
	rules    []categoryRule
	store    storage.Store
	profiles ProfileService
}

func NewCategorizationService(store storage.Store, profiles ProfileService) CategorizationService {
	return &categorizationService{
		rules:    defaultRules,
		store:    store,
		profiles: profiles,
	}
}

// Classify scores the transaction against every rule and returns the highest
// scoring prediction. Classification never blocks ingestion: a missing
// profile degrades to rule-only scoring, and an empty match set falls back to
// the default category at floor confidence.
func (s *categorizationService) Classify(description string, amount decimal.Decimal, transactionDate time.Time, userID int64, merchantName string) models.CategoryPrediction {
	normalized := strings.ToLower(description)
	absAmount := amount.Abs().InexactFloat64()
	isIncome := amount.IsPositive()

	// Income detection takes precedence over keyword scoring.
	if isIncome && hasIncomeKeywords(normalized) {
		if rule, ok := firstIncomeRule(s.rules); ok {
			return models.CategoryPrediction{
				Category:    rule.Category,
				Subcategory: rule.Subcategory,
				Confidence:  rule.BaseConfidence,
				Reasoning:   []string{"Income detected from description keywords"},
			}
		}
	}

	// Profile is a soft bias; ignore read failures.
	var profile *models.UserSpendingProfile
	if s.profiles != nil {
		if p, err := s.profiles.Profile(userID); err == nil {
			profile = p
		} else {
			logger.L.Warn("Spending profile unavailable, classifying without bias", "userID", userID, "error", err)
		}
	}

	best := models.CategoryPrediction{
		Category:    categoryOther,
		Subcategory: subcategoryGeneral,
		Confidence:  floorConfidence,
		Reasoning:   []string{"Default categorization"},
	}

	for i := range s.rules {
		rule := &s.rules[i]
		score := 0.0
		var reasons []string

		// Keyword matching: first match only, no double counting per rule.
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				score += scoreKeywordMatch
				reasons = append(reasons, fmt.Sprintf("Keyword match: %q", keyword))
				break
			}
		}

		if rule.AmountRange != nil {
			lo, hi := rule.AmountRange.Min, rule.AmountRange.Max
			if absAmount >= lo && (hi <= 0 || absAmount <= hi) {
				score += scoreAmountInRange
				reasons = append(reasons, fmt.Sprintf("Amount in expected range ($%g-$%g)", lo, hi))
			}
		}

		if profile != nil {
			if freq := profile.CategoryFrequency[rule.Category]; freq > 0 {
				bias := float64(freq) / 100
				if bias > maxProfileBias {
					bias = maxProfileBias
				}
				score += bias
				reasons = append(reasons, fmt.Sprintf("User frequency for %s: %d", rule.Category, freq))
			}
		}

		if len(rule.MerchantPatterns) > 0 && merchantName != "" {
			merchant := strings.ToLower(merchantName)
			for _, pattern := range rule.MerchantPatterns {
				if strings.Contains(merchant, pattern) {
					score += scoreMerchantMatch
					reasons = append(reasons, fmt.Sprintf("Merchant pattern match: %q", pattern))
					break
				}
			}
		}

		for _, tp := range rule.TimePatterns {
			if matchesTimePattern(tp, transactionDate) {
				score += scoreTimePattern
				reasons = append(reasons, timePatternReason(tp))
			}
		}

		confidence := rule.BaseConfidence * score
		if confidence > maxConfidence {
			confidence = maxConfidence
		}

		// Strictly greater keeps the earlier rule on ties.
		if confidence > best.Confidence {
			best = models.CategoryPrediction{
				Category:    rule.Category,
				Subcategory: rule.Subcategory,
				Confidence:  confidence,
				Reasoning:   reasons,
			}
		}
	}

	s.recordObservation(userID, best.Category, amount.Abs())
	return best
}

// CategorizeTransactions classifies every stored transaction without a
// confidence and persists the prediction.
func (s *categorizationService) CategorizeTransactions(userID int64) (int, error) {
	txs, err := s.store.GetUserTransactions(userID, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCategorizationFailed, err)
	}

	processed := 0
	for _, tx := range txs {
		if tx.CategoryConfidence.Valid {
			continue
		}
		// Merchant name is not synced separately; the description stands in.
		prediction := s.Classify(tx.Description, tx.Amount, tx.TransactionDate, userID, tx.Description)

		if err := s.store.UpdateTransactionCategory(tx.ID, prediction.Category, prediction.Subcategory, prediction.Confidence); err != nil {
			return processed, fmt.Errorf("%w: %v", ErrCategorizationFailed, err)
		}
		processed++

		if prediction.Confidence > 0.8 {
			logger.L.Debug("High confidence categorization",
				"userID", userID,
				"description", tx.Description,
				"category", prediction.Category,
				"subcategory", prediction.Subcategory,
				"confidence", fmt.Sprintf("%.2f", prediction.Confidence),
				"reasoning", strings.Join(prediction.Reasoning, ", "))
		}
	}

	logger.L.Info("Batch categorization completed", "userID", userID, "processed", processed)
	return processed, nil
}

func (s *categorizationService) recordObservation(userID int64, category string, absAmount decimal.Decimal) {
	if s.profiles != nil {
		s.profiles.RecordObservation(userID, category, absAmount)
	}
}

func hasIncomeKeywords(normalizedDescription string) bool {
	for _, keyword := range incomeKeywords {
		if strings.Contains(normalizedDescription, keyword) {
			return true
		}
	}
	return false
}

func firstIncomeRule(rules []categoryRule) (*categoryRule, bool) {
	for i := range rules {
		if rules[i].Category == categoryIncome {
			return &rules[i], true
		}
	}
	return nil, false
}

func matchesTimePattern(pattern string, t time.Time) bool {
	switch pattern {
	case timeWeekend:
		wd := t.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	case timeWeekday:
		wd := t.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case timeEvening:
		return t.Hour() >= 18
	}
	return false
}

func timePatternReason(pattern string) string {
	switch pattern {
	case timeWeekend:
		return "Weekend transaction pattern"
	case timeWeekday:
		return "Weekday transaction pattern"
	case timeEvening:
		return "Evening transaction pattern"
	}
	return "Time pattern match"
}
