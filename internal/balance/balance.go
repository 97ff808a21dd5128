// Package balance splits a group of players into two teams of near-equal
// strength.
package balance

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pickup-archive/pickups-api/internal/models"
	"github.com/pickup-archive/pickups-api/internal/utils"
)

type Metric string

const (
	MetricImpactRating Metric = "impactRating"
	MetricScore        Metric = "score"
	MetricKD           Metric = "kd"
)

// Metrics lists the accepted metric names.
var Metrics = []string{string(MetricImpactRating), string(MetricScore), string(MetricKD)}

// ParseMetric maps a request value to a Metric; empty means impactRating.
func ParseMetric(s string) (Metric, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return MetricImpactRating, nil
	}
	if utils.ContainsString(Metrics, name) {
		return Metric(name), nil
	}
	return "", fmt.Errorf("unknown metric %q, expected one of %s", s, strings.Join(Metrics, ", "))
}

// Rating picks the value of m from a player's averages.
func Rating(s *models.PlayerSummary, m Metric) float64 {
	switch m {
	case MetricScore:
		return s.AvgScore
	case MetricKD:
		return s.KDRatio
	default:
		return s.AvgImpactRating
	}
}

type Player struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

type Team struct {
	Players []Player `json:"players"`
	Total   float64  `json:"total"`
}

type Result struct {
	Metric     Metric  `json:"metric"`
	TeamA      Team    `json:"teamA"`
	TeamB      Team    `json:"teamB"`
	Difference float64 `json:"difference"`
}

// Split assigns players strongest first, each to the team with the lower
// running total. Team sizes never differ by more than one; ties go to team A.
func Split(players []Player, m Metric) Result {
	ordered := make([]Player, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Rating != ordered[j].Rating {
			return ordered[i].Rating > ordered[j].Rating
		}
		return ordered[i].Name < ordered[j].Name
	})

	capA := (len(ordered) + 1) / 2
	capB := len(ordered) / 2

	res := Result{
		Metric: m,
		TeamA:  Team{Players: make([]Player, 0, capA)},
		TeamB:  Team{Players: make([]Player, 0, capB)},
	}

	for _, p := range ordered {
		toA := res.TeamA.Total <= res.TeamB.Total
		if len(res.TeamA.Players) >= capA {
			toA = false
		} else if len(res.TeamB.Players) >= capB {
			toA = true
		}

		if toA {
			res.TeamA.Players = append(res.TeamA.Players, p)
			res.TeamA.Total += p.Rating
		} else {
			res.TeamB.Players = append(res.TeamB.Players, p)
			res.TeamB.Total += p.Rating
		}
	}

	res.Difference = math.Abs(res.TeamA.Total - res.TeamB.Total)
	return res
}
