package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/finsight/backend/src/models"
)

type fakePositions struct {
	positions map[string]decimal.Decimal
	err       error
}

func (f fakePositions) Positions(userID int64) (map[string]decimal.Decimal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.positions, nil
}

func snapshotWith(savingsRate, debtRatio, emergencyMonths string) *models.HealthSnapshot {
	return &models.HealthSnapshot{
		UserID:              1,
		NetWorth:            decimal.RequireFromString("10000.00"),
		SavingsRate:         decimal.RequireFromString(savingsRate),
		DebtToIncomeRatio:   decimal.RequireFromString(debtRatio),
		EmergencyFundMonths: decimal.RequireFromString(emergencyMonths),
		CalculatedAt:        time.Now(),
	}
}

func TestAssessRiskProfile(t *testing.T) {
	tests := []struct {
		name          string
		snapshot      *models.HealthSnapshot
		horizonYears  int
		wantScore     int
		wantTolerance string
	}{
		{
			name:          "missing snapshot yields conservative beginner profile",
			snapshot:      nil,
			horizonYears:  30,
			wantScore:     30,
			wantTolerance: models.ToleranceConservative,
		},
		{
			name:          "strong metrics with long horizon max out",
			snapshot:      snapshotWith("25.00", "5.00", "8.00"),
			horizonYears:  30,
			wantScore:     100,
			wantTolerance: models.ToleranceAggressive,
		},
		{
			name:          "middling metrics land moderate",
			snapshot:      snapshotWith("12.00", "15.00", "3.50"),
			horizonYears:  15,
			wantScore:     55,
			wantTolerance: models.ToleranceModerate,
		},
		{
			name:          "weak metrics stay conservative",
			snapshot:      snapshotWith("2.00", "45.00", "0.50"),
			horizonYears:  4,
			wantScore:     0,
			wantTolerance: models.ToleranceConservative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessRiskProfile(tt.snapshot, tt.horizonYears)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantTolerance, got.Tolerance)
		})
	}
}

func TestBuildPortfolio(t *testing.T) {
	tests := []struct {
		name            string
		risk            models.RiskProfile
		emergencyMonths float64
		want            models.Portfolio
	}{
		{
			name:            "moderate baseline untouched",
			risk:            models.RiskProfile{Tolerance: models.ToleranceModerate, TimeHorizonYears: 15},
			emergencyMonths: 6,
			want:            models.Portfolio{Stocks: 60, Bonds: 25, International: 10, RealEstate: 5, Cash: 0},
		},
		{
			name:            "short horizon shifts stocks into bonds",
			risk:            models.RiskProfile{Tolerance: models.ToleranceConservative, TimeHorizonYears: 5},
			emergencyMonths: 6,
			want:            models.Portfolio{Stocks: 20, Bonds: 60, International: 10, RealEstate: 5, Cash: 5},
		},
		{
			// Aggressive holds only 5 bond points; the long-horizon shift is
			// clamped so bonds stop at zero instead of going negative.
			name:            "long horizon shift clamps at available bonds",
			risk:            models.RiskProfile{Tolerance: models.ToleranceAggressive, TimeHorizonYears: 30},
			emergencyMonths: 6,
			want:            models.Portfolio{Stocks: 85, Bonds: 0, International: 10, RealEstate: 5, Cash: 0},
		},
		{
			name:            "thin emergency fund moves stocks to cash",
			risk:            models.RiskProfile{Tolerance: models.ToleranceModerate, TimeHorizonYears: 15},
			emergencyMonths: 1,
			want:            models.Portfolio{Stocks: 50, Bonds: 25, International: 10, RealEstate: 5, Cash: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPortfolio(tt.risk, tt.emergencyMonths)
			assert.Equal(t, tt.want, got)

			total := got.Stocks + got.Bonds + got.International + got.RealEstate + got.Cash
			assert.LessOrEqual(t, total, 100)
			assert.GreaterOrEqual(t, got.Stocks, 0)
			assert.GreaterOrEqual(t, got.Bonds, 0)
			assert.GreaterOrEqual(t, got.Cash, 0)
		})
	}
}

func TestGenerateRecommendations(t *testing.T) {
	store := newFakeStore()
	store.snapshots = []models.HealthSnapshot{*snapshotWith("25.00", "5.00", "8.00")}
	// A stale recommendation from a previous run.
	store.recommendations = []models.InvestmentRecommendation{
		{ID: 1, UserID: 1, Symbol: "BND", IsActive: true},
	}

	svc := NewInvestmentService(store, UnlinkedPositionProvider{}, 30)
	recs, err := svc.GenerateRecommendations(1)
	require.NoError(t, err)

	assert.Equal(t, 1, store.deactivations)
	require.NotEmpty(t, recs)

	// Aggressive with clamped bonds: VTI + VXUS split, VNQ, no BND or VTIAX.
	symbols := make(map[string]models.InvestmentRecommendation)
	total := decimal.Zero
	for _, rec := range recs {
		assert.True(t, rec.IsActive)
		assert.Equal(t, int64(1), rec.UserID)
		symbols[rec.Symbol] = rec
		total = total.Add(rec.RecommendedAllocation)
	}
	assert.True(t, total.LessThanOrEqual(decimal.NewFromInt(100)), "allocations total %s", total)

	require.Contains(t, symbols, "VTI")
	require.Contains(t, symbols, "VXUS")
	require.Contains(t, symbols, "VNQ")
	assert.NotContains(t, symbols, "BND")
	assert.NotContains(t, symbols, "VTIAX")

	// 85 stock points split 70/30 between domestic and international.
	assert.True(t, symbols["VTI"].RecommendedAllocation.Equal(decimal.RequireFromString("59.5")))
	assert.True(t, symbols["VXUS"].RecommendedAllocation.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, models.RiskHigh, symbols["VTI"].RiskLevel)
}

func TestGenerateRecommendationsWithoutSnapshot(t *testing.T) {
	store := newFakeStore()
	svc := NewInvestmentService(store, UnlinkedPositionProvider{}, 30)

	recs, err := svc.GenerateRecommendations(1)
	require.NoError(t, err)

	// Conservative base with thin emergency fund: stocks shed into bonds and
	// cash but every bucket is represented by a real instrument.
	symbols := make(map[string]bool)
	for _, rec := range recs {
		symbols[rec.Symbol] = true
	}
	assert.True(t, symbols["BND"])
	assert.True(t, symbols["VTIAX"])
	assert.True(t, symbols["VNQ"])
}

func TestRebalancePortfolio(t *testing.T) {
	store := newFakeStore()
	store.snapshots = []models.HealthSnapshot{*snapshotWith("15.00", "15.00", "4.00")}
	store.recommendations = []models.InvestmentRecommendation{
		{ID: 1, UserID: 1, Symbol: "VTI", RecommendedAllocation: decimal.RequireFromString("60"), IsActive: true},
		{ID: 2, UserID: 1, Symbol: "BND", RecommendedAllocation: decimal.RequireFromString("40"), IsActive: true},
	}

	// Net worth 10000: targets are VTI 6000, BND 4000.
	svc := NewInvestmentService(store, fakePositions{positions: map[string]decimal.Decimal{
		"VTI": decimal.RequireFromString("3000.00"),
		"BND": decimal.RequireFromString("7200.00"),
	}}, 30)

	actions, err := svc.RebalancePortfolio(1)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Contains(t, actions[0], "Buy $3000 of VTI")
	assert.Contains(t, actions[1], "Sell $3200 of BND")
}

func TestRebalancePortfolioWellBalanced(t *testing.T) {
	store := newFakeStore()
	store.snapshots = []models.HealthSnapshot{*snapshotWith("15.00", "15.00", "4.00")}
	store.recommendations = []models.InvestmentRecommendation{
		{ID: 1, UserID: 1, Symbol: "VTI", RecommendedAllocation: decimal.RequireFromString("60"), IsActive: true},
	}

	// Within the 5% drift band.
	svc := NewInvestmentService(store, fakePositions{positions: map[string]decimal.Decimal{
		"VTI": decimal.RequireFromString("6100.00"),
	}}, 30)

	actions, err := svc.RebalancePortfolio(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Your portfolio is well-balanced. No rebalancing needed at this time."}, actions)
}

func TestRebalancePortfolioWithoutPositionData(t *testing.T) {
	store := newFakeStore()
	store.snapshots = []models.HealthSnapshot{*snapshotWith("15.00", "15.00", "4.00")}

	svc := NewInvestmentService(store, UnlinkedPositionProvider{}, 30)
	actions, err := svc.RebalancePortfolio(1)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Contains(t, actions[0], "Link a brokerage account")
}

func TestRebalancePortfolioWithoutSnapshot(t *testing.T) {
	svc := NewInvestmentService(newFakeStore(), UnlinkedPositionProvider{}, 30)
	actions, err := svc.RebalancePortfolio(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Complete your financial profile for rebalancing recommendations"}, actions)
}
