package models

// PlayerSummary aggregates every recorded pickup of one player.
type PlayerSummary struct {
	Player          string  `json:"player" bson:"player"`
	Games           int64   `json:"games" bson:"games"`
	Wins            int64   `json:"wins" bson:"wins"`
	WinRate         float64 `json:"winRate" bson:"-"`
	AvgScore        float64 `json:"avgScore" bson:"avgScore"`
	AvgKills        float64 `json:"avgKills" bson:"avgKills"`
	AvgDeaths       float64 `json:"avgDeaths" bson:"avgDeaths"`
	AvgAssists      float64 `json:"avgAssists" bson:"avgAssists"`
	AvgTeamKills    float64 `json:"avgTeamKills" bson:"avgTeamKills"`
	AvgBlocks       float64 `json:"avgBlocks" bson:"avgBlocks"`
	AvgImpactRating float64 `json:"avgImpactRating" bson:"avgImpactRating"`
	KDRatio         float64 `json:"kdRatio" bson:"-"`
}

// Finalize fills the derived ratios once the averages are known.
func (s *PlayerSummary) Finalize() {
	if s.Games > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Games)
	}
	if s.AvgDeaths > 0 {
		s.KDRatio = s.AvgKills / s.AvgDeaths
	} else {
		s.KDRatio = s.AvgKills
	}
}
