package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/zip-weather/internal/weather"
)

// DefaultForecastURL is the Open-Meteo forecast endpoint.
const DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

// The normalizer depends on these exact field sets.
var (
	CurrentFields = []string{
		"rain", "showers", "snowfall", "precipitation", "temperature_2m",
		"is_day", "wind_speed_10m", "wind_direction_10m",
	}
	HourlyFields = []string{
		"temperature_2m", "precipitation_probability", "rain", "showers", "snowfall",
	}
	DailyFields = []string{
		"temperature_2m_max", "temperature_2m_min", "sunrise", "sunset",
		"rain_sum", "snowfall_sum", "showers_sum", "precipitation_probability_max",
	}
)

// OpenMeteoProvider implements weather.ForecastFetcher for Open-Meteo.
type OpenMeteoProvider struct {
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &OpenMeteoProvider{
		httpCfg: HTTPClientConfig{Client: client, BaseURL: baseURL},
		circuit: newCircuitBreaker("openmeteo"),
	}
}

// Fetch re-validates point before calling out, so a bad geocode result
// never turns into a forecast request.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, point weather.GeoPoint) (weather.RawForecast, error) {
	if err := point.Validate(); err != nil {
		return weather.RawForecast{}, err
	}

	values := url.Values{}
	values.Set("timezone", point.Timezone)
	values.Set("latitude", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	values.Set("daily", strings.Join(DailyFields, ","))
	values.Set("hourly", strings.Join(HourlyFields, ","))
	values.Set("current", strings.Join(CurrentFields, ","))

	var raw weather.RawForecast
	u := fmt.Sprintf("%s?%s", p.httpCfg.BaseURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &raw); err != nil {
		return weather.RawForecast{}, fmt.Errorf("forecast %.4f,%.4f: %w", point.Latitude, point.Longitude, err)
	}
	return raw, nil
}
