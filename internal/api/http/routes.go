package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/cloud-weather/internal/weather"
)

var validate = validator.New()

// daysQuery holds the trailing day-window shared by the observation and report endpoints.
type daysQuery struct {
	Days int `query:"days" validate:"required,min=1,max=30"`
}

func parseDaysQuery(c *fiber.Ctx) (int, error) {
	var q daysQuery
	if err := c.QueryParser(&q); err != nil {
		return 0, errors.New("days must be an integer between 1 and 30")
	}
	if err := validate.Struct(q); err != nil {
		return 0, errors.New("days must be an integer between 1 and 30")
	}
	return q.Days, nil
}

// RegisterObservationRoutes wires GET and POST /observation for one observation domain.
func RegisterObservationRoutes[T weather.Observation[T]](app *fiber.App, svc *weather.ObservationService[T]) {
	app.Get("/observation/:zip", func(c *fiber.Ctx) error {
		days, err := parseDaysQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		obs, err := svc.Since(c.UserContext(), c.Params("zip"), days)
		if err != nil {
			if errors.Is(err, weather.ErrInvalidRange) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch "+svc.Domain()+" observations")
		}

		return c.JSON(obs)
	})

	app.Post("/observation", func(c *fiber.Ctx) error {
		var obs T
		if err := c.BodyParser(&obs); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid observation body: "+err.Error())
		}
		if err := validate.Struct(obs); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stored, err := svc.Add(c.UserContext(), obs)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store "+svc.Domain()+" observation")
		}

		return c.JSON(stored)
	})
}
