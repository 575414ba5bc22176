package handlers

import (
	"prophecy-badge-system/workers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

type userEvent struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type roundPublishedEvent struct {
	RoundID         string   `json:"round_id" validate:"required,uuid"`
	Leaderboard     []string `json:"leaderboard" validate:"dive,uuid"`
	ConsecutiveWins int      `json:"consecutive_wins" validate:"min=0"`
}

type prophecyClassifiedEvent struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

// SetupEventRoutes wires the trigger endpoints the prophecy service calls
// after its own transactions commit. Badge evaluation happens on the award
// worker, never on the caller's request path: every endpoint validates,
// enqueues and answers 202.
func SetupEventRoutes(app *fiber.App, worker *workers.AwardWorker, log *zap.Logger) {
	events := app.Group("/s/events")

	enqueue := func(c *fiber.Ctx, t workers.Trigger) error {
		if !worker.Enqueue(t) {
			// Dropped triggers are caught by the recompute sweep; the
			// caller's operation must not fail over a badge.
			log.Warn("trigger dropped", zap.String("kind", t.Kind))
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
	}

	parseUserEvent := func(c *fiber.Ctx) (*userEvent, error) {
		var ev userEvent
		if err := c.BodyParser(&ev); err != nil {
			return nil, err
		}
		if err := validate.Struct(&ev); err != nil {
			return nil, err
		}
		return &ev, nil
	}

	badRequest := func(c *fiber.Ctx, err error) error {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid event payload",
			"cause": err.Error(),
		})
	}

	events.Post("/prophecy-created", func(c *fiber.Ctx) error {
		ev, err := parseUserEvent(c)
		if err != nil {
			return badRequest(c, err)
		}
		return enqueue(c, workers.Trigger{Kind: workers.TriggerProphecyCreated, UserID: ev.UserID})
	})

	events.Post("/rating-created", func(c *fiber.Ctx) error {
		ev, err := parseUserEvent(c)
		if err != nil {
			return badRequest(c, err)
		}
		return enqueue(c, workers.Trigger{Kind: workers.TriggerRatingCreated, UserID: ev.UserID})
	})

	events.Post("/credential-registered", func(c *fiber.Ctx) error {
		ev, err := parseUserEvent(c)
		if err != nil {
			return badRequest(c, err)
		}
		return enqueue(c, workers.Trigger{Kind: workers.TriggerCredentialRegistered, UserID: ev.UserID})
	})

	events.Post("/round-published", func(c *fiber.Ctx) error {
		var ev roundPublishedEvent
		if err := c.BodyParser(&ev); err != nil {
			return badRequest(c, err)
		}
		if err := validate.Struct(&ev); err != nil {
			return badRequest(c, err)
		}
		return enqueue(c, workers.Trigger{
			Kind:            workers.TriggerRoundPublished,
			RoundID:         ev.RoundID,
			Leaderboard:     ev.Leaderboard,
			ConsecutiveWins: ev.ConsecutiveWins,
		})
	})

	events.Post("/prophecy-classified", func(c *fiber.Ctx) error {
		var ev prophecyClassifiedEvent
		if err := c.BodyParser(&ev); err != nil {
			return badRequest(c, err)
		}
		if err := validate.Struct(&ev); err != nil {
			return badRequest(c, err)
		}
		return enqueue(c, workers.Trigger{
			Kind:        workers.TriggerProphecyClassified,
			UserID:      ev.UserID,
			Title:       ev.Title,
			Description: ev.Description,
		})
	})
}
