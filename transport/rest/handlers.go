package rest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/rocketscienceinc/ai-arena/internal/apperror"
	"github.com/rocketscienceinc/ai-arena/internal/entity"
	"github.com/rocketscienceinc/ai-arena/internal/usecase"
	"github.com/rocketscienceinc/ai-arena/internal/validation"
)

const defaultListLimit = 20

type ErrorResponse struct {
	Error string `json:"error"`
}

type matchUseCase interface {
	PlayMatch(ctx context.Context, request usecase.MatchRequest) (*entity.MatchRecord, error)
	GetMatch(ctx context.Context, id string) (*entity.MatchRecord, error)
	ListMatches(ctx context.Context, game string, limit int) ([]*entity.MatchRecord, error)
}

type Handlers interface {
	PlayMatch(c *fiber.Ctx) error
	GetMatch(c *fiber.Ctx) error
	ListMatches(c *fiber.Ctx) error
}

type handlers struct {
	logger  *slog.Logger
	matches matchUseCase
}

func NewHandlers(logger *slog.Logger, matches matchUseCase) Handlers {
	return &handlers{
		logger:  logger.With("component", "handlers"),
		matches: matches,
	}
}

var badRequestErrors = []error{
	validation.ErrValidation,
	apperror.ErrUnknownGame,
	apperror.ErrUnknownOrder,
	apperror.ErrUnknownAgentKind,
	apperror.ErrInvalidTestCase,
	apperror.ErrSecretNotFound,
}

// statusFor maps domain errors onto HTTP codes.
func statusFor(err error) int {
	if errors.Is(err, apperror.ErrResultNotFound) {
		return fiber.StatusNotFound
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return fiber.StatusBadRequest
		}
	}

	return fiber.StatusInternalServerError
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}

func (that *handlers) fail(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		that.logger.Error("request failed", "path", c.Path(), "error", err)
		return fiber.NewError(code, "internal server error")
	}

	return fiber.NewError(code, err.Error())
}

func (that *handlers) PlayMatch(c *fiber.Ctx) error {
	var request usecase.MatchRequest
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	record, err := that.matches.PlayMatch(c.UserContext(), request)
	if err != nil && record == nil {
		return that.fail(c, err)
	}

	if err != nil {
		that.logger.Warn("match not stored", "game_id", record.GameID, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (that *handlers) GetMatch(c *fiber.Ctx) error {
	record, err := that.matches.GetMatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return that.fail(c, err)
	}

	return c.JSON(record)
}

func (that *handlers) ListMatches(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be positive")
	}

	records, err := that.matches.ListMatches(c.UserContext(), c.Params("name"), limit)
	if err != nil {
		return that.fail(c, err)
	}

	return c.JSON(records)
}
