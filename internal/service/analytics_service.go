package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scoutiq/internal/analytics"
	"scoutiq/internal/logging"
	"scoutiq/internal/textgen"
)

const scoutingSystemPrompt = `You are an esports analyst writing a short scouting summary for a League of Legends coaching staff.
Restate only the structured data you are given. Do not invent statistics, players or matches.
Respond with a JSON object of the form {"explanation": "<two to four sentences>"}.`

var scoutingTemperature = 0.3

// Options tunes an AnalyticsService. Zero values select the defaults.
type Options struct {
	SnapshotWindow    int
	CarryPressureRows int
	Profiles          analytics.ProfileStrategy
	LateGame          analytics.LateGameClassifier
	Pools             PoolRefresher
	Now               func() time.Time
}

// AnalyticsService runs the aggregation layer over the match store. It holds
// no per-request state and is safe for concurrent use.
type AnalyticsService struct {
	reader    Reader
	writer    Writer
	text      TextGenerator
	pools     PoolRefresher
	profiles  analytics.ProfileStrategy
	lateGame  analytics.LateGameClassifier
	window    int
	carryRows int
	now       func() time.Time
}

// New wires a service. text may be nil, in which case every generated
// explanation is textgen.FallbackText.
func New(reader Reader, writer Writer, text TextGenerator, opts Options) *AnalyticsService {
	s := &AnalyticsService{
		reader:    reader,
		writer:    writer,
		text:      text,
		pools:     opts.Pools,
		profiles:  opts.Profiles,
		lateGame:  opts.LateGame,
		window:    opts.SnapshotWindow,
		carryRows: opts.CarryPressureRows,
		now:       opts.Now,
	}
	if s.profiles == nil {
		s.profiles = analytics.HistoricalProfiles{Source: reader}
	}
	if s.lateGame == nil {
		s.lateGame = analytics.FixedLateGame{}
	}
	if s.window <= 0 {
		s.window = analytics.DefaultSnapshotWindow
	}
	if s.carryRows <= 0 {
		s.carryRows = analytics.DefaultCarryPressureRows
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// AnalyzeMatch extracts player features, snapshots every team in the match
// and records deviation, tendency and draft insights. Returns nil when the
// match does not exist.
func (s *AnalyticsService) AnalyzeMatch(ctx context.Context, matchID uuid.UUID) (*analytics.Match, error) {
	logger := logging.Logger()
	startTime := time.Now()

	match, err := s.reader.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	if match == nil {
		logger.Warnf("match %s not found, skipping analysis", matchID)
		return nil, nil
	}

	stats, err := s.reader.MatchPlayerStats(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get player stats: %w", err)
	}
	features := analytics.ExtractPlayerFeatures(matchID, stats, s.now())
	if err := s.writer.UpsertFeatures(ctx, matchID, features); err != nil {
		return nil, fmt.Errorf("write features: %w", err)
	}

	teams, err := s.reader.MatchTeams(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match teams: %w", err)
	}
	snapshots := 0
	for _, team := range teams {
		snap, err := s.CreateTeamFeatureSnapshot(ctx, team.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot team %s: %w", team.ID, err)
		}
		if snap != nil {
			snapshots++
		}
	}

	insights, err := s.matchInsights(ctx, matchID, stats, teams)
	if err != nil {
		return nil, err
	}
	if err := s.writer.InsertInsights(ctx, insights); err != nil {
		return nil, fmt.Errorf("write insights: %w", err)
	}

	if s.pools != nil {
		if err := s.pools.RefreshForMatch(ctx, matchID); err != nil {
			// Analysis rows are written; stale pools only affect later comfort-pick checks.
			logger.Warnf("champion pool refresh failed for match %s: %v", matchID, err)
		}
	}

	logger.Infof("match %s analyzed in %v: %d features, %d snapshots, %d insights",
		matchID, time.Since(startTime), len(features), snapshots, len(insights))
	return match, nil
}

func (s *AnalyticsService) matchInsights(ctx context.Context, matchID uuid.UUID, stats []analytics.PlayerStats, teams []analytics.Team) ([]analytics.AIInsight, error) {
	now := s.now()
	var insights []analytics.AIInsight

	for _, ps := range stats {
		lossDeaths, err := s.reader.PlayerLossDeaths(ctx, ps.PlayerID, matchID, analytics.DeviationLossWindow)
		if err != nil {
			return nil, fmt.Errorf("get loss history for player %s: %w", ps.PlayerID, err)
		}
		if in := analytics.PlayerDeviationInsight(ps, lossDeaths, now); in != nil {
			insights = append(insights, *in)
		}
	}

	names := make(map[uuid.UUID]string, len(teams))
	for _, team := range teams {
		names[team.ID] = team.Name
		prior, err := s.reader.PriorTeamStats(ctx, team.ID, matchID, analytics.TendencyMatchWindow)
		if err != nil {
			return nil, fmt.Errorf("get prior team stats for %s: %w", team.ID, err)
		}
		if in := analytics.TeamTendencyInsight(matchID, team, prior, now); in != nil {
			insights = append(insights, *in)
		}
	}

	drafts, err := s.reader.MatchDrafts(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get drafts: %w", err)
	}
	for _, d := range drafts {
		pool, err := s.reader.TeamChampionPool(ctx, d.TeamID)
		if err != nil {
			return nil, fmt.Errorf("get champion pool for %s: %w", d.TeamID, err)
		}
		name := names[d.TeamID]
		if name == "" {
			name = d.Side + " side"
		}
		if in := analytics.DraftComfortInsight(d, name, pool, now); in != nil {
			insights = append(insights, *in)
		}
	}

	return insights, nil
}

// CreateTeamFeatureSnapshot rolls up the team's recent matches and appends
// the snapshot. Returns nil without writing when the team has no matches.
func (s *AnalyticsService) CreateTeamFeatureSnapshot(ctx context.Context, teamID uuid.UUID) (*analytics.TeamFeatureSnapshot, error) {
	records, err := s.reader.RecentTeamMatches(ctx, teamID, s.window)
	if err != nil {
		return nil, fmt.Errorf("get recent matches: %w", err)
	}
	snap := analytics.BuildTeamSnapshot(teamID, records, s.window, s.now())
	if snap == nil {
		logging.Logger().Debugf("team %s has no match history, snapshot skipped", teamID)
		return nil, nil
	}
	if err := s.writer.InsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	return snap, nil
}

// GetCoachDecisionMetrics combines the latest two snapshots with carry
// pressure. Returns nil when the team has no snapshot yet.
func (s *AnalyticsService) GetCoachDecisionMetrics(ctx context.Context, teamID uuid.UUID) (*analytics.CoachDecisionMetrics, error) {
	snaps, err := s.reader.LatestSnapshots(ctx, teamID, 2)
	if err != nil {
		return nil, fmt.Errorf("get snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	var previous *analytics.TeamFeatureSnapshot
	if len(snaps) > 1 {
		previous = &snaps[1]
	}

	rows, err := s.reader.RecentPlayerStats(ctx, teamID, s.carryRows)
	if err != nil {
		return nil, fmt.Errorf("get recent player stats: %w", err)
	}

	return analytics.BuildCoachDecisionMetrics(&snaps[0], previous, analytics.ComputeCarryPressure(rows)), nil
}

// GenerateScoutingReport builds, explains and appends a scouting report.
// Returns nil when the team does not exist or has no matches.
func (s *AnalyticsService) GenerateScoutingReport(ctx context.Context, teamID uuid.UUID) (*analytics.ScoutingReport, error) {
	logger := logging.Logger()
	startTime := time.Now()

	team, err := s.reader.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if team == nil {
		logger.Warnf("team %s not found, skipping scouting report", teamID)
		return nil, nil
	}

	records, err := s.reader.RecentTeamMatches(ctx, teamID, s.window)
	if err != nil {
		return nil, fmt.Errorf("get recent matches: %w", err)
	}
	report, input := analytics.BuildScoutingProfile(teamID, records, s.window, s.lateGame, s.now())
	if report == nil {
		return nil, nil
	}
	report.Explanation = s.explainScouting(ctx, *team, *input)

	if err := s.writer.InsertScoutingReport(ctx, report); err != nil {
		return nil, fmt.Errorf("write scouting report: %w", err)
	}

	logger.Infof("scouting report for team %s generated in %v", teamID, time.Since(startTime))
	return report, nil
}

type scoutingPrompt struct {
	Team string `json:"team"`
	analytics.ScoutingInput
}

type scoutingExplanation struct {
	Explanation string `json:"explanation"`
}

func (s *AnalyticsService) explainScouting(ctx context.Context, team analytics.Team, input analytics.ScoutingInput) string {
	logger := logging.Logger()
	if s.text == nil {
		return textgen.FallbackText
	}

	payload, err := json.Marshal(scoutingPrompt{Team: team.Name, ScoutingInput: input})
	if err != nil {
		logger.Warnf("encode scouting prompt for team %s: %v", team.ID, err)
		return analytics.TemplateScoutingExplanation(team.Name, input)
	}

	var out scoutingExplanation
	err = s.text.GenerateJSON(ctx, textgen.Request{
		System:      scoutingSystemPrompt,
		User:        string(payload),
		Temperature: &scoutingTemperature,
	}, &out)
	switch {
	case errors.Is(err, textgen.ErrMalformed):
		logger.Warnf("scouting explanation for team %s was malformed, using template: %v", team.ID, err)
		return analytics.TemplateScoutingExplanation(team.Name, input)
	case err != nil:
		logger.Warnf("scouting explanation for team %s unavailable: %v", team.ID, err)
		return textgen.FallbackText
	case strings.TrimSpace(out.Explanation) == "":
		logger.Warnf("scouting explanation for team %s was empty, using template", team.ID)
		return analytics.TemplateScoutingExplanation(team.Name, input)
	}
	return strings.TrimSpace(out.Explanation)
}

// LatestScoutingReport returns the team's current report, or nil.
func (s *AnalyticsService) LatestScoutingReport(ctx context.Context, teamID uuid.UUID) (*analytics.ScoutingReport, error) {
	report, err := s.reader.LatestScoutingReport(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get latest scouting report: %w", err)
	}
	return report, nil
}

// GetDraftRecommendations ranks the champions still available in state.
func (s *AnalyticsService) GetDraftRecommendations(ctx context.Context, state analytics.DraftState) (analytics.DraftRecommendations, error) {
	profiles, err := s.reader.ChampionProfiles(ctx)
	if err != nil {
		return analytics.DraftRecommendations{}, fmt.Errorf("get champion profiles: %w", err)
	}
	return analytics.RecommendPicks(state, profiles), nil
}

// UpdateChampionProfiles refreshes the profile table as of now.
func (s *AnalyticsService) UpdateChampionProfiles(ctx context.Context) error {
	return s.RefreshProfiles(ctx, s.now())
}

// RefreshProfiles recounts champion pools, then recomputes and upserts the
// champion-profile table with the configured strategy as of asOf. The static
// seed table is used when the strategy yields nothing.
func (s *AnalyticsService) RefreshProfiles(ctx context.Context, asOf time.Time) error {
	logger := logging.Logger()
	startTime := time.Now()

	if s.pools != nil {
		if err := s.pools.RefreshAll(ctx); err != nil {
			logger.Warnf("champion pool refresh failed: %v", err)
		}
	}

	strategy := s.profiles
	profiles, err := strategy.Profiles(ctx, asOf)
	if err != nil {
		return fmt.Errorf("compute %s profiles: %w", strategy.Name(), err)
	}
	if len(profiles) == 0 && strategy.Name() != analytics.StrategyStatic {
		logger.Infof("%s strategy produced no profiles, seeding static table", strategy.Name())
		strategy = analytics.StaticProfiles{}
		if profiles, err = strategy.Profiles(ctx, asOf); err != nil {
			return fmt.Errorf("compute %s profiles: %w", strategy.Name(), err)
		}
	}

	if err := s.writer.UpsertChampionProfiles(ctx, profiles); err != nil {
		return fmt.Errorf("write champion profiles: %w", err)
	}

	logger.Infof("refreshed %d champion profiles (%s, as of %s) in %v",
		len(profiles), strategy.Name(), asOf.Format(time.RFC3339), time.Since(startTime))
	return nil
}
