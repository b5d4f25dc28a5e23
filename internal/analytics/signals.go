package analytics

// Performance statuses.
const (
	StatusOverperforming = "Overperforming"
	StatusStable         = "Stable"
	StatusAtRisk         = "At Risk"
)

// Risk levels.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

// TempoLossNote is set when a strong early game collapses mid game.
const TempoLossNote = "Tempo loss after first objective rotation"

const tempoStableNote = "Tempo holds steady across game phases"

// PerformanceSignal is the weighted headline judgment for a snapshot.
type PerformanceSignal struct {
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Status     string   `json:"status"`
	Drivers    []string `json:"drivers"`
	Summary    string   `json:"summary"`
}

// TempoControl labels each game phase.
type TempoControl struct {
	Early string `json:"early"`
	Mid   string `json:"mid"`
	Late  string `json:"late"`
	Note  string `json:"note"`
}

// RiskExposure classifies how often the team gives up deaths.
type RiskExposure struct {
	RiskLevel      string `json:"riskLevel"`
	Pattern        string `json:"pattern"`
	Recommendation string `json:"recommendation"`
}

var performanceSummaries = map[string]string{
	StatusOverperforming: "Team is converting leads above its expected level",
	StatusStable:         "Results are in line with recent form",
	StatusAtRisk:         "Recent results point to structural issues that need attention",
}

var riskTable = map[string]RiskExposure{
	RiskHigh: {
		RiskLevel:      RiskHigh,
		Pattern:        "Mid-game teamfight collapses",
		Recommendation: "Avoid non-essential skirmishes mid-game",
	},
	RiskMedium: {
		RiskLevel:      RiskMedium,
		Pattern:        "Mid-game rotations without vision",
		Recommendation: "Improve vision before objectives",
	},
	RiskLow: {
		RiskLevel:      RiskLow,
		Pattern:        "Isolated pick-offs",
		Recommendation: "Maintain current vision standards",
	},
}

// ComputePerformanceSignal scores a snapshot and normalizes the score into a
// confidence in [0, 1].
func ComputePerformanceSignal(s TeamFeatureSnapshot) PerformanceSignal {
	midStability := 0.4
	if s.GoldAdvantage > 0 {
		midStability = 0.8
	}
	lateConversion := 0.5
	if s.WinRate > 0.6 {
		lateConversion = 0.9
	}

	score := s.WinRate*1.0 + s.ObjectiveControl*0.4 + midStability*0.3 + lateConversion*0.3
	confidence := score / 2.0
	if confidence > 1.0 {
		confidence = 1.0
	}

	status := StatusStable
	switch {
	case confidence > 0.8:
		status = StatusOverperforming
	case confidence < 0.4:
		status = StatusAtRisk
	}

	return PerformanceSignal{
		Score:      score,
		Confidence: confidence,
		Status:     status,
		Drivers:    []string{"early_game", "objective_control"},
		Summary:    performanceSummaries[status],
	}
}

// ComputeTempoControl labels early, mid and late game from a snapshot.
func ComputeTempoControl(s TeamFeatureSnapshot) TempoControl {
	t := TempoControl{Early: "Weak", Mid: "Stable", Late: "Neutral", Note: tempoStableNote}
	if s.GoldAdvantage > 1000 {
		t.Early = "Strong"
	}
	if s.AvgDeaths > 3.5 {
		t.Mid = "Volatile"
	}
	if s.ObjectiveControl > 0.6 {
		t.Late = "Strong"
	}
	if t.Early == "Strong" && t.Mid == "Volatile" {
		t.Note = TempoLossNote
	}
	return t
}

// ComputeRiskExposure maps average deaths onto the fixed risk table.
func ComputeRiskExposure(s TeamFeatureSnapshot) RiskExposure {
	level := RiskLow
	switch {
	case s.AvgDeaths > 4.5:
		level = RiskHigh
	case s.AvgDeaths > 3.0:
		level = RiskMedium
	}
	return riskTable[level]
}
