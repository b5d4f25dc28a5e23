package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePerformanceSignal(t *testing.T) {
	tests := []struct {
		name       string
		snap       TeamFeatureSnapshot
		wantScore  float64
		wantStatus string
	}{
		{
			name:       "dominant team",
			snap:       TeamFeatureSnapshot{WinRate: 0.9, ObjectiveControl: 0.8, GoldAdvantage: 1500},
			wantScore:  0.9 + 0.32 + 0.24 + 0.27,
			wantStatus: StatusOverperforming,
		},
		{
			name:       "middling team",
			snap:       TeamFeatureSnapshot{WinRate: 0.5, ObjectiveControl: 0.5, GoldAdvantage: 200},
			wantScore:  0.5 + 0.2 + 0.24 + 0.15,
			wantStatus: StatusStable,
		},
		{
			name:       "struggling team",
			snap:       TeamFeatureSnapshot{WinRate: 0.1, ObjectiveControl: 0.2, GoldAdvantage: -800},
			wantScore:  0.1 + 0.08 + 0.12 + 0.15,
			wantStatus: StatusAtRisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePerformanceSignal(tt.snap)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.InDelta(t, tt.wantScore/2, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, []string{"early_game", "objective_control"}, got.Drivers)
			assert.NotEmpty(t, got.Summary)
		})
	}
}

func TestComputePerformanceSignal_ConfidenceCapped(t *testing.T) {
	got := ComputePerformanceSignal(TeamFeatureSnapshot{WinRate: 1, ObjectiveControl: 1, GoldAdvantage: 5000})
	assert.LessOrEqual(t, got.Confidence, 1.0)
}

func TestComputePerformanceSignal_MonotonicInWinRate(t *testing.T) {
	for _, base := range []TeamFeatureSnapshot{
		{ObjectiveControl: 0.3, AvgDeaths: 4, GoldAdvantage: -200},
		{ObjectiveControl: 0.7, AvgDeaths: 2, GoldAdvantage: 900},
	} {
		prev := -1.0
		for wr := 0.0; wr <= 1.0001; wr += 0.05 {
			s := base
			s.WinRate = wr
			c := ComputePerformanceSignal(s).Confidence
			assert.GreaterOrEqual(t, c, prev, "win rate %.2f", wr)
			prev = c
		}
	}
}

func TestComputeTempoControl(t *testing.T) {
	t.Run("tempo loss after strong early game", func(t *testing.T) {
		got := ComputeTempoControl(TeamFeatureSnapshot{GoldAdvantage: 1500, AvgDeaths: 4.0, ObjectiveControl: 0.5})
		assert.Equal(t, "Strong", got.Early)
		assert.Equal(t, "Volatile", got.Mid)
		assert.Equal(t, "Neutral", got.Late)
		assert.Equal(t, TempoLossNote, got.Note)
	})

	t.Run("stable team", func(t *testing.T) {
		got := ComputeTempoControl(TeamFeatureSnapshot{GoldAdvantage: 300, AvgDeaths: 2.0, ObjectiveControl: 0.7})
		assert.Equal(t, "Weak", got.Early)
		assert.Equal(t, "Stable", got.Mid)
		assert.Equal(t, "Strong", got.Late)
		assert.NotEqual(t, TempoLossNote, got.Note)
	})

	t.Run("volatile without early lead", func(t *testing.T) {
		got := ComputeTempoControl(TeamFeatureSnapshot{GoldAdvantage: 0, AvgDeaths: 5.0})
		assert.Equal(t, "Volatile", got.Mid)
		assert.NotEqual(t, TempoLossNote, got.Note)
	})
}

func TestComputeRiskExposure(t *testing.T) {
	tests := []struct {
		deaths         float64
		level, pattern string
		recommendation string
	}{
		{5.0, RiskHigh, "Mid-game teamfight collapses", "Avoid non-essential skirmishes mid-game"},
		{4.5, RiskMedium, "Mid-game rotations without vision", "Improve vision before objectives"},
		{3.1, RiskMedium, "Mid-game rotations without vision", "Improve vision before objectives"},
		{3.0, RiskLow, "Isolated pick-offs", "Maintain current vision standards"},
		{0, RiskLow, "Isolated pick-offs", "Maintain current vision standards"},
	}

	for _, tt := range tests {
		got := ComputeRiskExposure(TeamFeatureSnapshot{AvgDeaths: tt.deaths})
		assert.Equal(t, tt.level, got.RiskLevel, "deaths %.1f", tt.deaths)
		assert.Equal(t, tt.pattern, got.Pattern)
		assert.Equal(t, tt.recommendation, got.Recommendation)
	}
}

func TestComputeCarryPressure(t *testing.T) {
	t.Run("no qualifying rows", func(t *testing.T) {
		assert.Nil(t, ComputeCarryPressure(nil))
		assert.Nil(t, ComputeCarryPressure([]PlayerStats{{Role: "Coach", Kills: 3}}))
	})

	t.Run("uniform fallback when nothing happened", func(t *testing.T) {
		var rows []PlayerStats
		for _, role := range Roles {
			rows = append(rows, PlayerStats{Role: role})
		}
		got := ComputeCarryPressure(rows)
		require.NotNil(t, got)
		require.Len(t, got.Roles, len(Roles))
		for _, rp := range got.Roles {
			assert.Equal(t, 0.2, rp.Share)
			assert.Equal(t, PressureBalanced, rp.Status)
		}
	})

	t.Run("resources concentrated on carries", func(t *testing.T) {
		rows := []PlayerStats{
			{Role: RoleTop, Kills: 1, Assists: 2, GoldEarned: 9000, PositioningScore: 0.5},
			{Role: RoleJungle, Kills: 2, Assists: 6, GoldEarned: 9000, PositioningScore: 0.5},
			{Role: RoleMid, Kills: 8, Assists: 4, GoldEarned: 14000, PositioningScore: 0.9},
			{Role: RoleADC, Kills: 9, Assists: 3, GoldEarned: 15000, PositioningScore: 0.8},
			{Role: RoleSupport, Kills: 0, Assists: 2, GoldEarned: 6000, PositioningScore: 0.2},
		}
		got := ComputeCarryPressure(rows)
		require.NotNil(t, got)

		byRole := map[string]RolePressure{}
		var total float64
		for _, rp := range got.Roles {
			byRole[rp.Role] = rp
			total += rp.Share
		}
		assert.InDelta(t, 1.0, total, 1e-9)

		// Mid: 8*2+4 + 14000/1000 + 0.9*10 = 43
		assert.InDelta(t, 43.0, byRole[RoleMid].Pressure, 1e-9)
		assert.Equal(t, PressureOverloaded, byRole[RoleMid].Status)
		assert.Equal(t, PressureUnderutilized, byRole[RoleTop].Status)
		assert.Equal(t, PressureBalanced, byRole[RoleJungle].Status)
		assert.Equal(t, PressureOverloaded, byRole[RoleADC].Status)
		assert.Equal(t, PressureUnderutilized, byRole[RoleSupport].Status)
		assert.Equal(t, "Carry pressure is concentrated on ADC and Mid", got.Insight)
	})
}

func TestBuildCoachDecisionMetrics(t *testing.T) {
	teamID := uuid.New()

	assert.Nil(t, BuildCoachDecisionMetrics(nil, nil, nil))

	latest := &TeamFeatureSnapshot{TeamID: teamID, WinRate: 0.7, ObjectiveControl: 0.65, AvgDeaths: 2.5, GoldAdvantage: 800}
	prev := &TeamFeatureSnapshot{TeamID: teamID, WinRate: 0.5, ObjectiveControl: 0.6, AvgDeaths: 3, GoldAdvantage: 1100}

	got := BuildCoachDecisionMetrics(latest, prev, nil)
	require.NotNil(t, got)
	assert.InDelta(t, 0.2, got.WinRateDelta, 1e-9)
	assert.InDelta(t, -300, got.GoldAdvantageDelta, 1e-9)
	assert.Equal(t, AdviceMaintainMomentum, got.NextAdjustment)
	assert.Nil(t, got.CarryPressure)

	first := BuildCoachDecisionMetrics(latest, nil, nil)
	require.NotNil(t, first)
	assert.Zero(t, first.WinRateDelta)
	assert.Zero(t, first.GoldAdvantageDelta)
}

func TestNextAdjustment_Priority(t *testing.T) {
	tests := []struct {
		name string
		snap TeamFeatureSnapshot
		want string
	}{
		{"deaths first", TeamFeatureSnapshot{AvgDeaths: 4.1, ObjectiveControl: 0.2, GoldAdvantage: -100}, AdviceDefensiveRotations},
		{"objectives second", TeamFeatureSnapshot{AvgDeaths: 4.0, ObjectiveControl: 0.4, GoldAdvantage: -100}, AdviceObjectivePriority},
		{"gold third", TeamFeatureSnapshot{AvgDeaths: 2, ObjectiveControl: 0.5, GoldAdvantage: -1}, AdviceLaningFocus},
		{"all good", TeamFeatureSnapshot{AvgDeaths: 2, ObjectiveControl: 0.5, GoldAdvantage: 0}, AdviceMaintainMomentum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextAdjustment(tt.snap))
		})
	}
}
