package routes

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/pickup-archive/pickups-api/internal/logging"
	"github.com/pickup-archive/pickups-api/internal/middleware"
	"github.com/pickup-archive/pickups-api/internal/models"
	"github.com/pickup-archive/pickups-api/internal/query"
	"github.com/pickup-archive/pickups-api/internal/store"
	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxSuggestionLimit = 50

// PickupRepository is the record store as the handlers see it.
type PickupRepository interface {
	List(ctx context.Context, q query.Query) ([]models.Pickup, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Pickup, error)
	Create(ctx context.Context, p *models.Pickup) error
	Replace(ctx context.Context, id primitive.ObjectID, p *models.Pickup) (*models.Pickup, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Pickup, error)
	SuggestNames(ctx context.Context, partial string, limit int) ([]string, error)
	Summary(ctx context.Context, player string) (*models.PlayerSummary, error)
}

type PickupHandler struct {
	store           PickupRepository
	builder         *query.Builder
	suggestionLimit int
	logger          *logrus.Logger
}

func NewPickupHandler(store PickupRepository, builder *query.Builder, suggestionLimit int, logger *logrus.Logger) *PickupHandler {
	if suggestionLimit < 1 || suggestionLimit > maxSuggestionLimit {
		suggestionLimit = 10
	}
	return &PickupHandler{
		store:           store,
		builder:         builder,
		suggestionLimit: suggestionLimit,
		logger:          logger,
	}
}

// List returns one page of records, newest first.
// @Summary List pickup records
// @Description Paginated list, optionally filtered by a case-insensitive player name substring. The sort parameter is accepted and ignored.
// @Tags Pickups
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Player name substring"
// @Success 200 {object} models.PickupPage
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /Pickups/public [get]
// @Router /Pickups [get]
func (h *PickupHandler) List(c *fiber.Ctx) error {
	params := h.builder.Parse(c.Query("page"), c.Query("limit"), c.Query("search"))

	records, total, err := h.store.List(c.UserContext(), h.builder.Build(params))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(models.NewPickupPage(records, total, params.Page, params.Limit))
}

// ListByPlayer pages through the records whose player name contains the path
// value.
// @Summary List records by player name
// @Tags Pickups
// @Produce json
// @Security BearerAuth
// @Param playerName path string true "Player name substring"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.PickupPage
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /Pickups/player/{playerName} [get]
func (h *PickupHandler) ListByPlayer(c *fiber.Ctx) error {
	name, err := pathValue(c, "playerName")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	params := h.builder.Parse(c.Query("page"), c.Query("limit"), name)
	records, total, err := h.store.List(c.UserContext(), h.builder.Build(params))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if total == 0 {
		return respondError(c, h.logger, apperrors.NewAppErrorf(apperrors.CodeNotFound, nil, "No records found for player %q", name))
	}

	return c.JSON(models.NewPickupPage(records, total, params.Page, params.Limit))
}

// Suggestions returns distinct player names for autocomplete.
// @Summary Player name suggestions
// @Tags Pickups
// @Produce json
// @Param query query string true "Partial player name"
// @Param limit query int false "Maximum names" default(10)
// @Success 200 {array} string
// @Router /Pickups/suggestions [get]
func (h *PickupHandler) Suggestions(c *fiber.Ctx) error {
	partial := c.Query("query")
	if partial == "" {
		partial = c.Query("q")
	}
	if partial == "" {
		return c.JSON([]string{})
	}

	limit := h.suggestionLimit
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		limit = n
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	names, err := h.store.SuggestNames(c.UserContext(), partial, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

// Get returns one record.
// @Summary Get a pickup record
// @Tags Pickups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Success 200 {object} models.Pickup
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /Pickups/{id} [get]
func (h *PickupHandler) Get(c *fiber.Ctx) error {
	id, err := models.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	record, err := h.store.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(record)
}

// Create inserts a record.
// @Summary Insert a pickup record
// @Tags Pickups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param record body models.PickupInput true "All record fields"
// @Success 201 {object} models.Pickup
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /Pickups/insertPlayer [post]
func (h *PickupHandler) Create(c *fiber.Ctx) error {
	record, err := h.parseRecord(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.store.Create(c.UserContext(), record); err != nil {
		return respondError(c, h.logger, err)
	}

	logging.WithAdminID(h.logger, middleware.GetAdminID(c)).WithFields(logrus.Fields{
		"id":     record.ID.Hex(),
		"player": record.Player,
	}).Info("Pickup record created")

	return c.Status(fiber.StatusCreated).JSON(record)
}

// Update replaces every field of a record.
// @Summary Replace a pickup record
// @Tags Pickups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Param record body models.PickupInput true "All record fields"
// @Success 200 {object} models.Pickup
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /Pickups/{id} [put]
func (h *PickupHandler) Update(c *fiber.Ctx) error {
	id, err := models.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	record, err := h.parseRecord(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	updated, err := h.store.Replace(c.UserContext(), id, record)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	logging.WithAdminID(h.logger, middleware.GetAdminID(c)).WithFields(logrus.Fields{
		"id": id.Hex(),
	}).Info("Pickup record updated")

	return c.JSON(updated)
}

// Delete removes a record and echoes it back.
// @Summary Delete a pickup record
// @Tags Pickups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Success 200 {object} models.Pickup
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /Pickups/{id} [delete]
func (h *PickupHandler) Delete(c *fiber.Ctx) error {
	id, err := models.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	deleted, err := h.store.Delete(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	logging.WithAdminID(h.logger, middleware.GetAdminID(c)).WithFields(logrus.Fields{
		"id": id.Hex(),
	}).Info("Pickup record deleted")

	return c.JSON(deleted)
}

func (h *PickupHandler) parseRecord(c *fiber.Ctx) (*models.Pickup, error) {
	var input models.PickupInput
	if err := c.BodyParser(&input); err != nil {
		return nil, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err)
	}
	return input.ToPickup()
}

// pathValue returns a decoded, trimmed path parameter. Blank values are
// rejected.
func pathValue(c *fiber.Ctx, key string) (string, error) {
	v, err := url.PathUnescape(c.Params(key))
	v = strings.TrimSpace(v)
	if err != nil || v == "" {
		return "", apperrors.NewAppErrorf(apperrors.CodeBadRequest, err, "Invalid %s", key)
	}
	return v, nil
}

// respondError maps store and validation results to the response. Internal
// detail is logged and never sent.
func respondError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	// handlers that already chose a message keep it
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) && errors.Is(err, store.ErrNotFound) {
		err = apperrors.NewAppError(apperrors.CodeNotFound, "Record not found", err)
	}

	appErr = apperrors.As(err)
	if appErr.HTTPStatus() >= fiber.StatusInternalServerError {
		logging.WithRequestID(logger, middleware.RequestID(c)).WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("Request failed")
	}

	return middleware.WriteError(c, appErr)
}
