package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/storage"
)

// rebalanceDriftPercent is the deviation from target, in percent of the
// target value, beyond which a buy/sell action is suggested.
const rebalanceDriftPercent = 5.0

type investmentService struct {
	store        storage.Store
	positions    PositionProvider
	horizonYears int
}

func NewInvestmentService(store storage.Store, positions PositionProvider, horizonYears int) InvestmentService {
	return &investmentService{
		store:        store,
		positions:    positions,
		horizonYears: horizonYears,
	}
}

// GenerateRecommendations derives the risk profile from the latest health
// snapshot, builds the target portfolio, and persists a fresh active
// recommendation set (prior rows are deactivated, not deleted).
func (s *investmentService) GenerateRecommendations(userID int64) ([]models.InvestmentRecommendation, error) {
	snapshot, err := s.store.GetLatestHealthSnapshot(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}

	risk := AssessRiskProfile(snapshot, s.horizonYears)

	emergencyFundMonths := 0.0
	if snapshot != nil {
		emergencyFundMonths = snapshot.EmergencyFundMonths.InexactFloat64()
	}
	portfolio := BuildPortfolio(risk, emergencyFundMonths)
	recommendations := mapInstruments(portfolio, risk.Tolerance)

	if err := s.store.DeactivateUserRecommendations(userID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}
	for i := range recommendations {
		recommendations[i].UserID = userID
		recommendations[i].IsActive = true
		if err := s.store.CreateRecommendation(&recommendations[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
		}
	}

	logger.L.Info("Investment recommendations generated",
		"userID", userID, "tolerance", risk.Tolerance, "riskScore", risk.Score, "count", len(recommendations))
	return recommendations, nil
}

// AssessRiskProfile maps the latest health snapshot to a 0-100 risk score and
// tolerance band. A missing snapshot yields the conservative beginner
// profile.
func AssessRiskProfile(snapshot *models.HealthSnapshot, horizonYears int) models.RiskProfile {
	if snapshot == nil {
		return models.RiskProfile{
			Score:            30,
			Tolerance:        models.ToleranceConservative,
			TimeHorizonYears: 5,
		}
	}

	savingsRate := snapshot.SavingsRate.InexactFloat64()
	emergencyFund := snapshot.EmergencyFundMonths.InexactFloat64()
	debtRatio := snapshot.DebtToIncomeRatio.InexactFloat64()

	riskScore := 0

	switch {
	case emergencyFund >= 6:
		riskScore += 25
	case emergencyFund >= 3:
		riskScore += 15
	case emergencyFund >= 1:
		riskScore += 5
	}

	switch {
	case savingsRate >= 20:
		riskScore += 25
	case savingsRate >= 15:
		riskScore += 20
	case savingsRate >= 10:
		riskScore += 10
	}

	switch {
	case debtRatio < 10:
		riskScore += 25
	case debtRatio < 20:
		riskScore += 15
	case debtRatio < 30:
		riskScore += 5
	}

	switch {
	case horizonYears > 20:
		riskScore += 25
	case horizonYears > 10:
		riskScore += 15
	case horizonYears > 5:
		riskScore += 10
	}

	tolerance := models.ToleranceConservative
	switch {
	case riskScore >= 75:
		tolerance = models.ToleranceAggressive
	case riskScore >= 50:
		tolerance = models.ToleranceModerate
	}

	return models.RiskProfile{
		Score:            riskScore,
		Tolerance:        tolerance,
		TimeHorizonYears: horizonYears,
	}
}

// BuildPortfolio applies the horizon and emergency-fund adjustments to the
// base allocation for the tolerance band. Shifts are clamped to the points
// actually available in the source bucket so no bucket goes negative and the
// total never exceeds 100.
func BuildPortfolio(risk models.RiskProfile, emergencyFundMonths float64) models.Portfolio {
	var portfolio models.Portfolio
	switch risk.Tolerance {
	case models.ToleranceAggressive:
		portfolio = models.Portfolio{Stocks: 80, Bonds: 5, International: 10, RealEstate: 5, Cash: 0}
	case models.ToleranceModerate:
		portfolio = models.Portfolio{Stocks: 60, Bonds: 25, International: 10, RealEstate: 5, Cash: 0}
	default:
		portfolio = models.Portfolio{Stocks: 30, Bonds: 50, International: 10, RealEstate: 5, Cash: 5}
	}

	if risk.TimeHorizonYears < 10 {
		shift := min(10, portfolio.Stocks)
		portfolio.Stocks -= shift
		portfolio.Bonds += shift
	} else if risk.TimeHorizonYears > 25 {
		shift := min(10, portfolio.Bonds)
		portfolio.Bonds -= shift
		portfolio.Stocks += shift
	}

	if emergencyFundMonths < 3 {
		shift := min(10, portfolio.Stocks)
		portfolio.Stocks -= shift
		portfolio.Cash += shift
	}

	return portfolio
}

// Instrument catalog. Descriptive text and expected-return ranges are fixed
// per instrument, not computed.
func mapInstruments(portfolio models.Portfolio, tolerance string) []models.InvestmentRecommendation {
	var recs []models.InvestmentRecommendation

	if portfolio.Stocks > 0 {
		stocks := decimal.NewFromInt(int64(portfolio.Stocks))
		if tolerance == models.ToleranceAggressive {
			recs = append(recs, models.InvestmentRecommendation{
				Symbol:                "VTI",
				Name:                  "Vanguard Total Stock Market ETF",
				RecommendedAllocation: stocks.Mul(decimal.NewFromFloat(0.7)).Round(2),
				RiskLevel:             models.RiskHigh,
				ExpectedReturn:        "8-10%",
				Description:           "Low-cost total market exposure with strong long-term growth potential",
			})
			recs = append(recs, models.InvestmentRecommendation{
				Symbol:                "VXUS",
				Name:                  "Vanguard Total International Stock ETF",
				RecommendedAllocation: stocks.Mul(decimal.NewFromFloat(0.3)).Round(2),
				RiskLevel:             models.RiskHigh,
				ExpectedReturn:        "7-9%",
				Description:           "International diversification for global growth exposure",
			})
		} else {
			recs = append(recs, models.InvestmentRecommendation{
				Symbol:                "VTI",
				Name:                  "Vanguard Total Stock Market ETF",
				RecommendedAllocation: stocks,
				RiskLevel:             models.RiskMedium,
				ExpectedReturn:        "7-9%",
				Description:           "Broad market exposure suitable for moderate risk tolerance",
			})
		}
	}

	if portfolio.Bonds > 0 {
		recs = append(recs, models.InvestmentRecommendation{
			Symbol:                "BND",
			Name:                  "Vanguard Total Bond Market ETF",
			RecommendedAllocation: decimal.NewFromInt(int64(portfolio.Bonds)),
			RiskLevel:             models.RiskLow,
			ExpectedReturn:        "3-5%",
			Description:           "Stable income and capital preservation through diversified bonds",
		})
	}

	if portfolio.International > 0 && tolerance != models.ToleranceAggressive {
		recs = append(recs, models.InvestmentRecommendation{
			Symbol:                "VTIAX",
			Name:                  "Vanguard Total International Stock Index",
			RecommendedAllocation: decimal.NewFromInt(int64(portfolio.International)),
			RiskLevel:             models.RiskMedium,
			ExpectedReturn:        "6-8%",
			Description:           "International diversification to reduce domestic market risk",
		})
	}

	if portfolio.RealEstate > 0 {
		recs = append(recs, models.InvestmentRecommendation{
			Symbol:                "VNQ",
			Name:                  "Vanguard Real Estate ETF",
			RecommendedAllocation: decimal.NewFromInt(int64(portfolio.RealEstate)),
			RiskLevel:             models.RiskMedium,
			ExpectedReturn:        "5-7%",
			Description:           "Real estate exposure for inflation protection and diversification",
		})
	}

	return recs
}

// RebalancePortfolio compares each active recommendation's target value
// against the actual position value from the PositionProvider. Without
// position data the operation degrades to a single guidance message.
func (s *investmentService) RebalancePortfolio(userID int64) ([]string, error) {
	snapshot, err := s.store.GetLatestHealthSnapshot(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}
	if snapshot == nil {
		return []string{"Complete your financial profile for rebalancing recommendations"}, nil
	}

	recommendations, err := s.store.GetUserRecommendations(userID, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}

	positions, err := s.positions.Positions(userID)
	if err != nil {
		if errors.Is(err, ErrNoPositionData) {
			return []string{"Link a brokerage account to receive rebalancing suggestions based on your actual holdings."}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}

	hundred := decimal.NewFromInt(100)
	var actions []string
	for _, rec := range recommendations {
		targetValue := rec.RecommendedAllocation.Div(hundred).Mul(snapshot.NetWorth)
		if !targetValue.IsPositive() {
			continue
		}
		currentValue := positions[rec.Symbol]

		difference := currentValue.Sub(targetValue).Abs()
		percentDifference := difference.Div(targetValue).Mul(hundred)

		if percentDifference.GreaterThan(decimal.NewFromFloat(rebalanceDriftPercent)) {
			if currentValue.GreaterThan(targetValue) {
				actions = append(actions, fmt.Sprintf("Sell $%s of %s to rebalance", difference.Round(0).String(), rec.Symbol))
			} else {
				actions = append(actions, fmt.Sprintf("Buy $%s of %s to rebalance", difference.Round(0).String(), rec.Symbol))
			}
		}
	}

	if len(actions) == 0 {
		actions = append(actions, "Your portfolio is well-balanced. No rebalancing needed at this time.")
	}
	return actions, nil
}
