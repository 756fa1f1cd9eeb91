package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/zip-weather/internal/weather"
)

// DefaultGeocodingURL is the Open-Meteo geocoding search endpoint.
const DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteoGeocoder implements weather.Geocoder against Open-Meteo's
// geocoding search, restricted to US postal codes.
type OpenMeteoGeocoder struct {
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(client *http.Client, baseURL string) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &OpenMeteoGeocoder{
		httpCfg: HTTPClientConfig{Client: client, BaseURL: baseURL},
		circuit: newCircuitBreaker("geocoding"),
	}
}

// Lookup resolves zip to the first candidate the provider returns.
func (g *OpenMeteoGeocoder) Lookup(ctx context.Context, zip weather.ZipCode) (weather.GeoPoint, bool, error) {
	if _, err := weather.ParseZip(string(zip)); err != nil {
		return weather.GeoPoint{}, false, err
	}

	values := url.Values{}
	values.Set("name", string(zip))
	values.Set("countryCode", "US")
	values.Set("count", "1")
	values.Set("format", "json")

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Timezone  string  `json:"timezone"`
		} `json:"results"`
	}

	u := fmt.Sprintf("%s?%s", g.httpCfg.BaseURL, values.Encode())
	if err := getJSON(ctx, g.httpCfg, g.circuit, u, &payload); err != nil {
		return weather.GeoPoint{}, false, fmt.Errorf("geocode %s: %w", zip, err)
	}

	if len(payload.Results) == 0 {
		return weather.GeoPoint{}, false, nil
	}

	first := payload.Results[0]
	return weather.GeoPoint{
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
		Timezone:  first.Timezone,
	}, true, nil
}
