package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/cloud-weather/internal/weather"
)

// RegisterReportRoutes wires the weather report endpoints.
func RegisterReportRoutes(app *fiber.App, agg *weather.ReportAggregator) {
	app.Get("/weather-report/:zip", func(c *fiber.Ctx) error {
		days, err := parseDaysQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Params are only valid inside the handler; the zip outlives it in the store.
		zip := utils.CopyString(c.Params("zip"))

		report, err := agg.BuildReport(c.UserContext(), zip, days)
		if err != nil {
			switch {
			case errors.Is(err, weather.ErrInvalidRange):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, weather.ErrNoData):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.Is(err, weather.ErrUpstreamUnavailable):
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to build weather report")
			}
		}

		return c.JSON(report)
	})

	app.Get("/weather-report/:zip/history", func(c *fiber.Ctx) error {
		reports, err := agg.GetReports(c.UserContext(), utils.CopyString(c.Params("zip")))
		if err != nil {
			if errors.Is(err, weather.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather reports for requested zip code")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather reports")
		}

		return c.JSON(reports)
	})
}
