package analytics

import (
	"time"

	"github.com/google/uuid"
)

// KDA returns (kills + assists) / max(1, deaths).
func KDA(kills, deaths, assists int) float64 {
	if deaths < 1 {
		deaths = 1
	}
	return float64(kills+assists) / float64(deaths)
}

// ExtractPlayerFeatures derives one KDA feature per player stat line of a match.
func ExtractPlayerFeatures(matchID uuid.UUID, stats []PlayerStats, now time.Time) []ExtractedFeature {
	features := make([]ExtractedFeature, 0, len(stats))
	for _, ps := range stats {
		if ps.MatchID != matchID {
			continue
		}
		features = append(features, ExtractedFeature{
			ID:            uuid.New(),
			EntityID:      ps.PlayerID,
			EntityType:    EntityPlayer,
			FeatureName:   FeatureKDA,
			Value:         KDA(ps.Kills, ps.Deaths, ps.Assists),
			SourceMatchID: matchID,
			CreatedAt:     now,
		})
	}
	return features
}
