package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scoutiq/internal/analytics"
	"scoutiq/internal/logging"
)

// Job types accepted on the queue.
const (
	JobAnalyzeMatch    = "analyze_match"
	JobTeamSnapshot    = "team_snapshot"
	JobScoutingReport  = "scouting_report"
	JobRefreshProfiles = "refresh_profiles"
)

// JobPayload represents the incoming job from the Redis queue. A payload
// carrying only match_id is an analyze_match job.
type JobPayload struct {
	Type    string `json:"type,omitempty"`
	MatchID string `json:"match_id,omitempty"`
	TeamID  string `json:"team_id,omitempty"`
}

// Service is the subset of the analytics service the worker drives.
type Service interface {
	AnalyzeMatch(ctx context.Context, matchID uuid.UUID) (*analytics.Match, error)
	CreateTeamFeatureSnapshot(ctx context.Context, teamID uuid.UUID) (*analytics.TeamFeatureSnapshot, error)
	GenerateScoutingReport(ctx context.Context, teamID uuid.UUID) (*analytics.ScoutingReport, error)
	UpdateChampionProfiles(ctx context.Context) error
}

// AnalyticsProcessor decodes queue payloads and dispatches them onto the
// analytics service.
type AnalyticsProcessor struct {
	svc Service
}

// NewAnalyticsProcessor creates a processor bound to svc.
func NewAnalyticsProcessor(svc Service) *AnalyticsProcessor {
	return &AnalyticsProcessor{svc: svc}
}

// Handle processes a single job from the queue.
func (p *AnalyticsProcessor) Handle(ctx context.Context, payload []byte) error {
	logger := logging.Logger()
	startTime := time.Now()

	var job JobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("unmarshal job payload: %w", err)
	}
	if job.Type == "" && job.MatchID != "" {
		job.Type = JobAnalyzeMatch
	}

	logger.Infof("processing %s job", job.Type)

	switch job.Type {
	case JobAnalyzeMatch:
		matchID, err := uuid.Parse(job.MatchID)
		if err != nil {
			return fmt.Errorf("parse match_id: %w", err)
		}
		if _, err := p.svc.AnalyzeMatch(ctx, matchID); err != nil {
			return fmt.Errorf("analyze match %s: %w", matchID, err)
		}

	case JobTeamSnapshot:
		teamID, err := uuid.Parse(job.TeamID)
		if err != nil {
			return fmt.Errorf("parse team_id: %w", err)
		}
		snap, err := p.svc.CreateTeamFeatureSnapshot(ctx, teamID)
		if err != nil {
			return fmt.Errorf("snapshot team %s: %w", teamID, err)
		}
		if snap == nil {
			logger.Warnf("team %s has no matches, no snapshot written", teamID)
		}

	case JobScoutingReport:
		teamID, err := uuid.Parse(job.TeamID)
		if err != nil {
			return fmt.Errorf("parse team_id: %w", err)
		}
		report, err := p.svc.GenerateScoutingReport(ctx, teamID)
		if err != nil {
			return fmt.Errorf("scouting report for team %s: %w", teamID, err)
		}
		if report == nil {
			logger.Warnf("team %s not found or without matches, no report written", teamID)
		}

	case JobRefreshProfiles:
		if err := p.svc.UpdateChampionProfiles(ctx); err != nil {
			return fmt.Errorf("refresh champion profiles: %w", err)
		}

	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}

	logger.Infof("%s job completed in %v", job.Type, time.Since(startTime))
	return nil
}
