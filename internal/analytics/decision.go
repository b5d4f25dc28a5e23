package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Next-adjustment advice, in priority order.
const (
	AdviceDefensiveRotations = "Tighten defensive rotations and ward coverage to cut avoidable deaths"
	AdviceObjectivePriority  = "Prioritize setup for dragon and herald spawns to win objective trades"
	AdviceLaningFocus        = "Focus on laning fundamentals to stop bleeding gold before 15 minutes"
	AdviceMaintainMomentum   = "Maintain momentum"
)

// CoachDecisionMetrics is the signal bundle shown on the coaching dashboard.
type CoachDecisionMetrics struct {
	TeamID             uuid.UUID           `json:"teamId"`
	SnapshotAt         time.Time           `json:"snapshotAt"`
	Snapshot           TeamFeatureSnapshot `json:"snapshot"`
	Performance        PerformanceSignal   `json:"performance"`
	Tempo              TempoControl        `json:"tempo"`
	Risk               RiskExposure        `json:"risk"`
	CarryPressure      *CarryPressure      `json:"carryPressure"`
	WinRateDelta       float64             `json:"winRateDelta"`
	GoldAdvantageDelta float64             `json:"goldAdvantageDelta"`
	NextAdjustment     string              `json:"nextAdjustment"`
}

// NextAdjustment picks the single most pressing piece of advice.
func NextAdjustment(s TeamFeatureSnapshot) string {
	switch {
	case s.AvgDeaths > 4.0:
		return AdviceDefensiveRotations
	case s.ObjectiveControl < 0.5:
		return AdviceObjectivePriority
	case s.GoldAdvantage < 0:
		return AdviceLaningFocus
	default:
		return AdviceMaintainMomentum
	}
}

// BuildCoachDecisionMetrics combines the signal calculators. previous and
// carry may be nil; nil is returned when latest is nil.
func BuildCoachDecisionMetrics(latest, previous *TeamFeatureSnapshot, carry *CarryPressure) *CoachDecisionMetrics {
	if latest == nil {
		return nil
	}

	m := &CoachDecisionMetrics{
		TeamID:         latest.TeamID,
		SnapshotAt:     latest.Timestamp,
		Snapshot:       *latest,
		Performance:    ComputePerformanceSignal(*latest),
		Tempo:          ComputeTempoControl(*latest),
		Risk:           ComputeRiskExposure(*latest),
		CarryPressure:  carry,
		NextAdjustment: NextAdjustment(*latest),
	}
	if previous != nil {
		m.WinRateDelta = latest.WinRate - previous.WinRate
		m.GoldAdvantageDelta = latest.GoldAdvantage - previous.GoldAdvantage
	}
	return m
}
