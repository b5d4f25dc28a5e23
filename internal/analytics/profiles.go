package analytics

import (
	"context"
	"sort"
	"time"
)

// Profile strategy names accepted by configuration.
const (
	StrategyHistorical = "historical"
	StrategyStatic     = "static"
)

// RoleFlex is the synergy key for partners whose role is unknown.
const RoleFlex = "Flex"

// ProfileStrategy produces the champion-profile table as of a point in time.
type ProfileStrategy interface {
	Name() string
	Profiles(ctx context.Context, asOf time.Time) ([]ChampionProfile, error)
}

// DraftHistorySource loads decided matches with their drafts and stat lines.
type DraftHistorySource interface {
	DraftHistory(ctx context.Context, asOf time.Time) ([]MatchRecord, error)
}

// StaticProfiles is the fixed seed table used before any draft history exists.
type StaticProfiles struct{}

func (StaticProfiles) Name() string { return StrategyStatic }

type seedProfile struct {
	champion    string
	synergy     map[string][]string
	counters    []string
	counteredBy []string
}

var seedProfiles = []seedProfile{
	{"Ahri", map[string][]string{RoleJungle: {"Lee Sin", "Vi"}}, []string{"Azir"}, []string{"Kassadin"}},
	{"Azir", map[string][]string{RoleSupport: {"Rakan"}}, []string{"Orianna"}, []string{"Ahri"}},
	{"Jinx", map[string][]string{RoleSupport: {"Thresh", "Lulu"}}, []string{"Kog'Maw"}, []string{"Draven"}},
	{"Kai'Sa", map[string][]string{RoleSupport: {"Nautilus"}}, []string{"Ezreal"}, []string{"Caitlyn"}},
	{"Lee Sin", map[string][]string{RoleMid: {"Ahri", "Orianna"}}, []string{"Nidalee"}, []string{"Poppy"}},
	{"Orianna", map[string][]string{RoleJungle: {"Vi", "Lee Sin"}, RoleTop: {"Malphite"}}, []string{"Syndra"}, []string{"Fizz"}},
	{"Thresh", map[string][]string{RoleADC: {"Jinx", "Kalista"}}, []string{"Blitzcrank"}, []string{"Morgana"}},
	{"Vi", map[string][]string{RoleMid: {"Orianna", "Ahri"}}, []string{"Lee Sin"}, []string{"Poppy"}},
}

func (StaticProfiles) Profiles(_ context.Context, asOf time.Time) ([]ChampionProfile, error) {
	out := make([]ChampionProfile, 0, len(seedProfiles))
	for _, s := range seedProfiles {
		synergy := make(map[string][]string, len(s.synergy))
		for role, champs := range s.synergy {
			synergy[role] = append([]string(nil), champs...)
		}
		out = append(out, ChampionProfile{
			Champion:      s.champion,
			PickFrequency: 15,
			WinRate:       0.55,
			RoleSynergy:   synergy,
			CounterStats: CounterStats{
				Counters:    append([]string(nil), s.counters...),
				CounteredBy: append([]string(nil), s.counteredBy...),
			},
			UpdatedAt: asOf,
		})
	}
	return out, nil
}

// HistoricalProfiles derives profiles from decided drafts up to asOf.
type HistoricalProfiles struct {
	Source DraftHistorySource
	// MinPairGames is the number of shared games required before a synergy or
	// counter relationship is recorded. Zero means 2.
	MinPairGames int
}

func (HistoricalProfiles) Name() string { return StrategyHistorical }

func (h HistoricalProfiles) Profiles(ctx context.Context, asOf time.Time) ([]ChampionProfile, error) {
	records, err := h.Source.DraftHistory(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return ComputeChampionProfiles(records, h.MinPairGames, asOf), nil
}

type tally struct {
	games int
	wins  int
}

func (t tally) rate() float64 {
	if t.games == 0 {
		return 0
	}
	return float64(t.wins) / float64(t.games)
}

// ComputeChampionProfiles aggregates pick counts, win rates, same-team
// synergies and head-to-head counters from decided matches dated at or before
// asOf. Output is ordered by champion name.
func ComputeChampionProfiles(records []MatchRecord, minPairGames int, asOf time.Time) []ChampionProfile {
	if minPairGames <= 0 {
		minPairGames = 2
	}

	picks := map[string]*tally{}
	together := map[string]map[string]*tally{}
	versus := map[string]map[string]*tally{}
	roles := map[string]map[string]int{} // champion -> role -> occurrences

	bump := func(m map[string]map[string]*tally, a, b string, won bool) {
		if m[a] == nil {
			m[a] = map[string]*tally{}
		}
		t := m[a][b]
		if t == nil {
			t = &tally{}
			m[a][b] = t
		}
		t.games++
		if won {
			t.wins++
		}
	}

	for _, rec := range records {
		if rec.Match.WinnerID == nil || rec.Match.Date.After(asOf) {
			continue
		}
		for _, ps := range rec.PlayerStats {
			if ps.Champion == "" || ps.Role == "" {
				continue
			}
			if roles[ps.Champion] == nil {
				roles[ps.Champion] = map[string]int{}
			}
			roles[ps.Champion][ps.Role]++
		}

		for _, d := range rec.Drafts {
			won := rec.Match.WonBy(d.TeamID)
			var enemy []string
			for _, other := range rec.Drafts {
				if other.TeamID != d.TeamID {
					enemy = append(enemy, other.Picks...)
				}
			}
			for _, c := range d.Picks {
				t := picks[c]
				if t == nil {
					t = &tally{}
					picks[c] = t
				}
				t.games++
				if won {
					t.wins++
				}
				for _, partner := range d.Picks {
					if partner != c {
						bump(together, c, partner, won)
					}
				}
				for _, e := range enemy {
					bump(versus, c, e, won)
				}
			}
		}
	}

	names := make([]string, 0, len(picks))
	for c := range picks {
		names = append(names, c)
	}
	sort.Strings(names)

	out := make([]ChampionProfile, 0, len(names))
	for _, c := range names {
		p := ChampionProfile{
			Champion:      c,
			PickFrequency: picks[c].games,
			WinRate:       picks[c].rate(),
			RoleSynergy:   map[string][]string{},
			CounterStats:  CounterStats{Counters: []string{}, CounteredBy: []string{}},
			UpdatedAt:     asOf,
		}
		for _, partner := range sortedKeys(together[c]) {
			t := together[c][partner]
			if t.games >= minPairGames && t.rate() >= 0.6 {
				role := primaryRole(roles[partner])
				p.RoleSynergy[role] = append(p.RoleSynergy[role], partner)
			}
		}
		for _, e := range sortedKeys(versus[c]) {
			t := versus[c][e]
			if t.games < minPairGames {
				continue
			}
			switch r := t.rate(); {
			case r >= 0.6:
				p.CounterStats.Counters = append(p.CounterStats.Counters, e)
			case r <= 0.4:
				p.CounterStats.CounteredBy = append(p.CounterStats.CounteredBy, e)
			}
		}
		out = append(out, p)
	}
	return out
}

func sortedKeys(m map[string]*tally) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// primaryRole is the most frequent role for a champion, ties broken by Roles
// order; RoleFlex when unknown.
func primaryRole(counts map[string]int) string {
	best, bestCount := RoleFlex, 0
	for _, role := range Roles {
		if counts[role] > bestCount {
			best, bestCount = role, counts[role]
		}
	}
	return best
}
