package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Player roles recognised by the role-based rollups. The slice order is the
// iteration (and tie-break) order used everywhere a role is selected.
const (
	RoleTop     = "Top"
	RoleJungle  = "Jungle"
	RoleMid     = "Mid"
	RoleADC     = "ADC"
	RoleSupport = "Support"
)

var Roles = []string{RoleTop, RoleJungle, RoleMid, RoleADC, RoleSupport}

// Draft sides.
const (
	SideBlue = "Blue"
	SideRed  = "Red"
)

// Feature entity types and names written by the extractor.
const (
	EntityPlayer = "Player"
	FeatureKDA   = "kda"
)

// InsightConfidence is attached to every locally templated insight.
const InsightConfidence = 0.95

// Insight categories.
const (
	CategoryCoaching = "Coaching"
	CategoryTendency = "Tendency"
	CategoryDraft    = "Draft"
)

// Team mirrors the teams table.
type Team struct {
	ID     uuid.UUID
	Name   string
	Region string
	League string
}

// Player mirrors the players table.
type Player struct {
	ID     uuid.UUID
	TeamID uuid.UUID
	Name   string
	Role   string
}

// Match mirrors the matches table. WinnerID stays nil until a result exists.
type Match struct {
	ID          uuid.UUID
	SeriesID    *uuid.UUID
	Date        time.Time
	DurationSec int
	Patch       string
	WinnerID    *uuid.UUID
	Tournament  string
	GameTitle   string
}

// WonBy reports whether teamID is the recorded winner.
func (m Match) WonBy(teamID uuid.UUID) bool {
	return m.WinnerID != nil && *m.WinnerID == teamID
}

// PlayerStats is one player's line for one match. TeamID, PlayerName and Role
// are denormalized from the players table at read time.
type PlayerStats struct {
	ID               uuid.UUID
	MatchID          uuid.UUID
	PlayerID         uuid.UUID
	TeamID           uuid.UUID
	PlayerName       string
	Role             string
	Champion         string
	Kills            int
	Deaths           int
	Assists          int
	CreepScore       int
	GoldEarned       int
	PositioningScore float64 // 0-1
	MatchDate        time.Time
}

// TeamStats is one team's objective line for one match.
type TeamStats struct {
	ID         uuid.UUID
	MatchID    uuid.UUID
	TeamID     uuid.UUID
	Barons     int
	Dragons    int
	Towers     int
	GoldDiff15 int
}

// ObjectiveEvents is barons + dragons + towers.
func (t TeamStats) ObjectiveEvents() int {
	return t.Barons + t.Dragons + t.Towers
}

// Draft holds one team's picks and bans for a match, in draft order.
type Draft struct {
	ID             uuid.UUID
	MatchID        uuid.UUID
	TeamID         uuid.UUID
	Side           string
	Picks          []string
	Bans           []string
	WinProbability float64
}

// ChampionPoolEntry records how often a player has picked a champion.
type ChampionPoolEntry struct {
	PlayerID  uuid.UUID
	Champion  string
	Frequency int
}

// MatchRecord bundles a match with every stat row recorded for it, for all
// participating teams.
type MatchRecord struct {
	Match       Match
	TeamStats   []TeamStats
	PlayerStats []PlayerStats
	Drafts      []Draft
}

// TeamFeatureSnapshot is an immutable rollup of a team's recent matches.
type TeamFeatureSnapshot struct {
	ID               uuid.UUID
	TeamID           uuid.UUID
	Timestamp        time.Time
	WinRate          float64 // 0-1
	ObjectiveControl float64 // 0-1
	AvgDeaths        float64
	GoldAdvantage    float64 // can be negative
	MatchCount       int
}

// ScoutingReport mirrors the scouting_reports table.
type ScoutingReport struct {
	ID              uuid.UUID
	TeamID          uuid.UUID
	Timestamp       time.Time
	EarlyGame       string
	MidGame         string
	LateGame        string
	WeakRoles       []string
	AggressionScore float64 // 0-1
	SidePreference  string
	Explanation     string
}

// CounterStats lists the champions a profile beats and loses to.
type CounterStats struct {
	Counters    []string `json:"Counters"`
	CounteredBy []string `json:"CounteredBy"`
}

// ChampionProfile mirrors the champion_profiles table, keyed by Champion.
type ChampionProfile struct {
	Champion      string
	PickFrequency int
	WinRate       float64
	RoleSynergy   map[string][]string // role -> synergistic champions
	CounterStats  CounterStats
	UpdatedAt     time.Time
}

// ExtractedFeature is a derived numeric value for an entity, unique per
// (EntityID, FeatureName, SourceMatchID).
type ExtractedFeature struct {
	ID            uuid.UUID
	EntityID      uuid.UUID
	EntityType    string
	FeatureName   string
	Value         float64
	SourceMatchID uuid.UUID
	CreatedAt     time.Time
}

// AIInsight is a natural-language finding attached to a match.
type AIInsight struct {
	ID         uuid.UUID
	MatchID    uuid.UUID
	Category   string
	Content    string
	Confidence float64
	Evidence   map[string]any
	CreatedAt  time.Time
}
