package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nhasan-dev/district-travel-advisor/internal/district"
	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, topNDefault int) {
	app.Get("/health", func(c *fiber.Ctx) error {
		meta, ok := service.Health(c.Context())
		resp := fiber.Map{
			"status":  "ok",
			"service": "district-travel-advisor",
		}
		if ok {
			resp["cache"] = meta
		} else {
			resp["cache"] = nil
		}
		return c.JSON(resp)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/districts/coolest", func(c *fiber.Ctx) error {
		limit := topNDefault
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 64 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer within 1-64")
			}
			limit = n
		}

		ranked, err := service.CoolestDistricts(c.Context(), limit)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"count":     len(ranked),
			"districts": ranked,
		})
	})

	v1.Get("/travel/recommendation", func(c *fiber.Ctx) error {
		req, err := parseRecommendationQuery(c, service.ForecastDays(), service.Today())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := service.Recommendation(c.Context(), req.origin(), req.Destination, req.date)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(rec)
	})
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, district.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "unknown destination district")
	case errors.Is(err, weather.ErrDataUnavailable), errors.Is(err, weather.ErrInsufficientData):
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather data is currently unavailable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

// recommendationQuery holds query parameters for the travel endpoint.
type recommendationQuery struct {
	Lat         float64 `validate:"latitude"`
	Lon         float64 `validate:"longitude"`
	Destination string  `validate:"required"`

	date time.Time
}

func (r recommendationQuery) origin() district.Coordinates {
	return district.Coordinates{Latitude: r.Lat, Longitude: r.Lon}
}

func parseRecommendationQuery(c *fiber.Ctx, forecastDays int, today time.Time) (recommendationQuery, error) {
	var q recommendationQuery

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("lon must be a number")
	}

	q.Lat = lat
	q.Lon = lon
	q.Destination = c.Query("destination")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	// Travel date defaults to tomorrow and must stay inside the forecast
	// window. Both are anchored to "today" in the upstream timezone, not the
	// server's.
	q.date = today.AddDate(0, 0, 1)
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return q, errors.New("date must be formatted as YYYY-MM-DD")
		}
		q.date = d
	}
	lastDay := today.AddDate(0, 0, forecastDays-1)
	if q.date.Before(today) || q.date.After(lastDay) {
		return q, errors.New("date must fall within the forecast window")
	}

	return q, nil
}
