package routes

import (
	"context"
	"errors"
	"sort"

	"github.com/pickup-archive/pickups-api/internal/balance"
	"github.com/pickup-archive/pickups-api/internal/models"
	"github.com/pickup-archive/pickups-api/internal/store"
	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

const statsConcurrency = 8

type StatsHandler struct {
	store  PickupRepository
	logger *logrus.Logger
}

func NewStatsHandler(store PickupRepository, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{store: store, logger: logger}
}

// PlayerStats returns the averages behind the comparison charts.
// @Summary Player averages
// @Tags Stats
// @Produce json
// @Param playerName path string true "Exact player name, any case"
// @Success 200 {object} models.PlayerSummary
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /Pickups/stats/{playerName} [get]
func (h *StatsHandler) PlayerStats(c *fiber.Ctx) error {
	name, err := pathValue(c, "playerName")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	summary, err := h.store.Summary(c.UserContext(), name)
	if errors.Is(err, store.ErrNotFound) {
		return respondError(c, h.logger, apperrors.NewAppErrorf(apperrors.CodeNotFound, err, "No records found for player %q", name))
	}
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(summary)
}

// Matchmaking splits the named players into two balanced teams.
// @Summary Balance two teams
// @Tags Stats
// @Accept json
// @Produce json
// @Param request body models.MatchmakingRequest true "Players and metric (impactRating, score or kd)"
// @Success 200 {object} balance.Result
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /Pickups/matchmaking [post]
func (h *StatsHandler) Matchmaking(c *fiber.Ctx) error {
	var req models.MatchmakingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.logger, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}
	if err := req.Validate(); err != nil {
		return respondError(c, h.logger, err)
	}

	metric, err := balance.ParseMetric(req.Metric)
	if err != nil {
		return respondError(c, h.logger, apperrors.NewValidationError(err.Error(), []string{"metric"}))
	}

	players, err := h.loadRatings(c.UserContext(), req.Players, metric)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(balance.Split(players, metric))
}

// loadRatings fetches every player's summary concurrently. The first failure
// cancels the rest.
func (h *StatsHandler) loadRatings(ctx context.Context, names []string, metric balance.Metric) ([]balance.Player, error) {
	p := pool.NewWithResults[balance.Player]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(statsConcurrency)

	for _, name := range names {
		name := name
		p.Go(func(ctx context.Context) (balance.Player, error) {
			summary, err := h.store.Summary(ctx, name)
			if errors.Is(err, store.ErrNotFound) {
				return balance.Player{}, apperrors.NewAppErrorf(apperrors.CodeNotFound, err, "No records found for player %q", name)
			}
			if err != nil {
				return balance.Player{}, err
			}
			return balance.Player{Name: summary.Player, Rating: balance.Rating(summary, metric)}, nil
		})
	}

	players, err := p.Wait()
	if err != nil {
		return nil, err
	}

	// results arrive in completion order
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return players, nil
}
