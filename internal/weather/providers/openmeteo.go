package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nhasan-dev/district-travel-advisor/internal/district"
	"github.com/nhasan-dev/district-travel-advisor/internal/metrics"
	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

// Open-Meteo hourly timestamps come back as local time without a zone.
const hourlyTimeLayout = "2006-01-02T15:04"

// OpenMeteo implements weather.Client against the Open-Meteo forecast and
// air-quality endpoints. Both endpoints accept comma-separated coordinate
// lists, so one reload needs exactly two upstream requests.
type OpenMeteo struct {
	forecastURL   string
	airQualityURL string
	timezone      string
	httpCfg       HTTPClientConfig

	forecastCB *gobreaker.CircuitBreaker
	airCB      *gobreaker.CircuitBreaker
}

// NewOpenMeteo creates the client. forecastURL and airQualityURL point at the
// respective API roots (e.g. https://api.open-meteo.com/v1/forecast).
func NewOpenMeteo(client *http.Client, forecastURL, airQualityURL, timezone string) *OpenMeteo {
	cbSettings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}
	}

	return &OpenMeteo{
		forecastURL:   forecastURL,
		airQualityURL: airQualityURL,
		timezone:      timezone,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		forecastCB: gobreaker.NewCircuitBreaker(cbSettings("openmeteo-forecast")),
		airCB:      gobreaker.NewCircuitBreaker(cbSettings("openmeteo-air-quality")),
	}
}

// BulkForecast fetches hourly 2m temperatures for every coordinate.
func (p *OpenMeteo) BulkForecast(ctx context.Context, coords []district.Coordinates, days int) (map[district.Coordinates][]weather.HourlyPoint, error) {
	return p.fetchHourly(ctx, "forecast", p.forecastURL, "temperature_2m", coords, days, p.forecastCB)
}

// BulkAirQuality fetches hourly PM2.5 readings for every coordinate.
func (p *OpenMeteo) BulkAirQuality(ctx context.Context, coords []district.Coordinates, days int) (map[district.Coordinates][]weather.HourlyPoint, error) {
	return p.fetchHourly(ctx, "air_quality", p.airQualityURL, "pm2_5", coords, days, p.airCB)
}

// hourlyPayload is the per-location response shape shared by both endpoints;
// only one of the value arrays is populated depending on the hourly field
// requested.
type hourlyPayload struct {
	Hourly struct {
		Time []string `json:"time"`
		// Values are pointers: the API reports null for hours it has no
		// reading for, common on the air-quality endpoint.
		Temperature2m []*float64 `json:"temperature_2m"`
		PM25          []*float64 `json:"pm2_5"`
	} `json:"hourly"`
}

func (p *OpenMeteo) fetchHourly(
	ctx context.Context,
	endpoint, baseURL, field string,
	coords []district.Coordinates,
	days int,
	cb *gobreaker.CircuitBreaker,
) (map[district.Coordinates][]weather.HourlyPoint, error) {
	if len(coords) == 0 {
		return map[district.Coordinates][]weather.HourlyPoint{}, nil
	}

	buildRequest := func() (*http.Request, error) {
		lats := make([]string, len(coords))
		lons := make([]string, len(coords))
		for i, c := range coords {
			lats[i] = strconv.FormatFloat(c.Latitude, 'f', 4, 64)
			lons[i] = strconv.FormatFloat(c.Longitude, 'f', 4, 64)
		}

		values := url.Values{}
		values.Set("latitude", strings.Join(lats, ","))
		values.Set("longitude", strings.Join(lons, ","))
		values.Set("hourly", field)
		values.Set("forecast_days", strconv.Itoa(days))
		values.Set("timezone", p.timezone)

		return http.NewRequest(http.MethodGet, baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, cb, buildRequest)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	payloads, err := decodeHourly(body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "malformed").Inc()
		return nil, err
	}
	if len(payloads) != len(coords) {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "malformed").Inc()
		return nil, fmt.Errorf("%w: got %d locations, requested %d", ErrMalformedResponse, len(payloads), len(coords))
	}

	out := make(map[district.Coordinates][]weather.HourlyPoint, len(coords))
	for i, pl := range payloads {
		series, err := hourlySeries(pl, field)
		if err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "malformed").Inc()
			return nil, err
		}
		out[coords[i]] = series
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return out, nil
}

// decodeHourly tolerates both response shapes: Open-Meteo returns a single
// object for one coordinate and an array for many.
func decodeHourly(body []byte) ([]hourlyPayload, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var many []hourlyPayload
		if err := json.Unmarshal(body, &many); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return many, nil
	}

	var one hourlyPayload
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return []hourlyPayload{one}, nil
}

func hourlySeries(pl hourlyPayload, field string) ([]weather.HourlyPoint, error) {
	values := pl.Hourly.Temperature2m
	if field == "pm2_5" {
		values = pl.Hourly.PM25
	}
	if len(values) != len(pl.Hourly.Time) {
		return nil, fmt.Errorf("%w: %d timestamps but %d %s values", ErrMalformedResponse, len(pl.Hourly.Time), len(values), field)
	}

	series := make([]weather.HourlyPoint, 0, len(values))
	for i, raw := range pl.Hourly.Time {
		if values[i] == nil {
			// Hours without a reading are simply absent from the series.
			continue
		}
		ts, err := time.Parse(hourlyTimeLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", ErrMalformedResponse, raw)
		}
		series = append(series, weather.HourlyPoint{Timestamp: ts, Value: *values[i]})
	}
	return series, nil
}
