package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scoutiq/internal/analytics"
	"scoutiq/internal/textgen"
)

type featureKey struct {
	entity  uuid.UUID
	name    string
	matchID uuid.UUID
}

// fakeStore is an in-memory Reader and Writer.
type fakeStore struct {
	mu sync.Mutex

	teams    map[uuid.UUID]analytics.Team
	records  []analytics.MatchRecord
	pools    map[uuid.UUID][]analytics.ChampionPoolEntry
	profiles map[string]analytics.ChampionProfile

	features  map[featureKey]analytics.ExtractedFeature
	snapshots []analytics.TeamFeatureSnapshot
	reports   []analytics.ScoutingReport
	insights  []analytics.AIInsight

	readErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:    map[uuid.UUID]analytics.Team{},
		pools:    map[uuid.UUID][]analytics.ChampionPoolEntry{},
		profiles: map[string]analytics.ChampionProfile{},
		features: map[featureKey]analytics.ExtractedFeature{},
	}
}

func (f *fakeStore) addTeam(name string) analytics.Team {
	t := analytics.Team{ID: uuid.New(), Name: name, Region: "EU", League: "LEC"}
	f.teams[t.ID] = t
	return t
}

// newestFirst returns records sorted by date descending.
func (f *fakeStore) newestFirst() []analytics.MatchRecord {
	out := append([]analytics.MatchRecord(nil), f.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Match.Date.After(out[j].Match.Date) })
	return out
}

func involves(rec analytics.MatchRecord, teamID uuid.UUID) bool {
	for _, ts := range rec.TeamStats {
		if ts.TeamID == teamID {
			return true
		}
	}
	for _, ps := range rec.PlayerStats {
		if ps.TeamID == teamID {
			return true
		}
	}
	return false
}

func (f *fakeStore) record(matchID uuid.UUID) *analytics.MatchRecord {
	for i := range f.records {
		if f.records[i].Match.ID == matchID {
			return &f.records[i]
		}
	}
	return nil
}

func (f *fakeStore) GetMatch(_ context.Context, matchID uuid.UUID) (*analytics.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec := f.record(matchID); rec != nil {
		m := rec.Match
		return &m, nil
	}
	return nil, nil
}

func (f *fakeStore) GetTeam(_ context.Context, teamID uuid.UUID) (*analytics.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.teams[teamID]; ok {
		return &t, nil
	}
	return nil, nil
}

func (f *fakeStore) MatchTeams(_ context.Context, matchID uuid.UUID) ([]analytics.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.record(matchID)
	if rec == nil {
		return nil, nil
	}
	var teams []analytics.Team
	for _, t := range f.teams {
		if involves(*rec, t.ID) {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (f *fakeStore) MatchPlayerStats(_ context.Context, matchID uuid.UUID) ([]analytics.PlayerStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec := f.record(matchID); rec != nil {
		return append([]analytics.PlayerStats(nil), rec.PlayerStats...), nil
	}
	return nil, nil
}

func (f *fakeStore) MatchDrafts(_ context.Context, matchID uuid.UUID) ([]analytics.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec := f.record(matchID); rec != nil {
		return append([]analytics.Draft(nil), rec.Drafts...), nil
	}
	return nil, nil
}

func (f *fakeStore) RecentTeamMatches(_ context.Context, teamID uuid.UUID, limit int) ([]analytics.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []analytics.MatchRecord
	for _, rec := range f.newestFirst() {
		if involves(rec, teamID) && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) RecentPlayerStats(_ context.Context, teamID uuid.UUID, limit int) ([]analytics.PlayerStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []analytics.PlayerStats
	for _, rec := range f.newestFirst() {
		for _, ps := range rec.PlayerStats {
			if ps.TeamID == teamID && len(out) < limit {
				out = append(out, ps)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) PlayerLossDeaths(_ context.Context, playerID, excludeMatchID uuid.UUID, limit int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, rec := range f.newestFirst() {
		if rec.Match.ID == excludeMatchID || rec.Match.WinnerID == nil {
			continue
		}
		for _, ps := range rec.PlayerStats {
			if ps.PlayerID == playerID && !rec.Match.WonBy(ps.TeamID) && len(out) < limit {
				out = append(out, ps.Deaths)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) PriorTeamStats(_ context.Context, teamID, excludeMatchID uuid.UUID, limit int) ([]analytics.TeamStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []analytics.TeamStats
	for _, rec := range f.newestFirst() {
		if rec.Match.ID == excludeMatchID {
			continue
		}
		for _, ts := range rec.TeamStats {
			if ts.TeamID == teamID && len(out) < limit {
				out = append(out, ts)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) TeamChampionPool(_ context.Context, teamID uuid.UUID) ([]analytics.ChampionPoolEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pools[teamID], nil
}

func (f *fakeStore) LatestSnapshots(_ context.Context, teamID uuid.UUID, limit int) ([]analytics.TeamFeatureSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []analytics.TeamFeatureSnapshot
	for _, s := range f.snapshots {
		if s.TeamID == teamID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) LatestScoutingReport(_ context.Context, teamID uuid.UUID) (*analytics.ScoutingReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *analytics.ScoutingReport
	for i := range f.reports {
		r := f.reports[i]
		if r.TeamID == teamID && (latest == nil || r.Timestamp.After(latest.Timestamp)) {
			latest = &r
		}
	}
	return latest, nil
}

func (f *fakeStore) ChampionProfiles(_ context.Context) ([]analytics.ChampionProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]analytics.ChampionProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Champion < out[j].Champion })
	return out, nil
}

func (f *fakeStore) DraftHistory(_ context.Context, asOf time.Time) ([]analytics.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []analytics.MatchRecord
	for _, rec := range f.newestFirst() {
		if len(rec.Drafts) > 0 && !rec.Match.Date.After(asOf) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertFeatures(_ context.Context, _ uuid.UUID, features []analytics.ExtractedFeature) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, feat := range features {
		f.features[featureKey{feat.EntityID, feat.FeatureName, feat.SourceMatchID}] = feat
	}
	return nil
}

func (f *fakeStore) InsertSnapshot(_ context.Context, s *analytics.TeamFeatureSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, *s)
	return nil
}

func (f *fakeStore) InsertScoutingReport(_ context.Context, r *analytics.ScoutingReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, *r)
	return nil
}

func (f *fakeStore) InsertInsights(_ context.Context, insights []analytics.AIInsight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insights = append(f.insights, insights...)
	return nil
}

func (f *fakeStore) UpsertChampionProfiles(_ context.Context, profiles []analytics.ChampionProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range profiles {
		f.profiles[p.Champion] = p
	}
	return nil
}

// stubText returns a canned completion or error from GenerateJSON.
type stubText struct {
	text  string
	err   error
	calls int
	last  textgen.Request
}

func (s *stubText) GenerateJSON(_ context.Context, req textgen.Request, dest any) error {
	s.calls++
	s.last = req
	if s.err != nil {
		return s.err
	}
	return textgen.DecodeJSON(s.text, dest)
}

type countingPools struct {
	forMatch []uuid.UUID
	all      int
	err      error
}

func (c *countingPools) RefreshForMatch(_ context.Context, matchID uuid.UUID) error {
	c.forMatch = append(c.forMatch, matchID)
	return c.err
}

func (c *countingPools) RefreshAll(context.Context) error {
	c.all++
	return c.err
}

// stepClock advances one minute per call.
func stepClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}
