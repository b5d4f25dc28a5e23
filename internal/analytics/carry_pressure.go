package analytics

import (
	"fmt"
	"sort"
)

// DefaultCarryPressureRows is roughly five games of five players.
const DefaultCarryPressureRows = 25

// Role pressure statuses.
const (
	PressureOverloaded    = "Overloaded"
	PressureUnderutilized = "Underutilized"
	PressureBalanced      = "Balanced"
)

// RolePressure is one role's share of the team's resources and impact.
type RolePressure struct {
	Role     string  `json:"role"`
	Pressure float64 `json:"pressure"`
	Share    float64 `json:"share"`
	Status   string  `json:"status"`
}

// CarryPressure is the per-role distribution, in Roles order.
type CarryPressure struct {
	Roles   []RolePressure `json:"roles"`
	Insight string         `json:"insight"`
}

type roleAccumulator struct {
	damage float64
	gold   float64
	clutch float64
}

// ComputeCarryPressure buckets recent stat lines by role. Lines whose role is
// not one of Roles are ignored; nil is returned when none qualify.
func ComputeCarryPressure(rows []PlayerStats) *CarryPressure {
	acc := make(map[string]*roleAccumulator, len(Roles))
	for _, role := range Roles {
		acc[role] = &roleAccumulator{}
	}

	qualifying := 0
	for _, ps := range rows {
		a, ok := acc[ps.Role]
		if !ok {
			continue
		}
		qualifying++
		a.damage += float64(ps.Kills*2 + ps.Assists)
		a.gold += float64(ps.GoldEarned)
		a.clutch += ps.PositioningScore
	}
	if qualifying == 0 {
		return nil
	}

	var total float64
	pressures := make([]RolePressure, 0, len(Roles))
	for _, role := range Roles {
		a := acc[role]
		p := a.damage + a.gold/1000 + a.clutch*10
		total += p
		pressures = append(pressures, RolePressure{Role: role, Pressure: p})
	}

	for i := range pressures {
		share := 0.2
		if total > 0 {
			share = pressures[i].Pressure / total
		}
		pressures[i].Share = share
		switch {
		case share > 0.25:
			pressures[i].Status = PressureOverloaded
		case share < 0.15:
			pressures[i].Status = PressureUnderutilized
		default:
			pressures[i].Status = PressureBalanced
		}
	}

	ranked := make([]RolePressure, len(pressures))
	copy(ranked, pressures)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Share > ranked[j].Share })

	return &CarryPressure{
		Roles:   pressures,
		Insight: fmt.Sprintf("Carry pressure is concentrated on %s and %s", ranked[0].Role, ranked[1].Role),
	}
}
