package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/zip-weather/internal/weather"
)

func TestGeocoderQueryAndFirstResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("name") != "11211" || q.Get("countryCode") != "US" || q.Get("count") != "1" || q.Get("format") != "json" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"latitude":40.7093,"longitude":-73.9565,"timezone":"America/New_York"},
			{"latitude":1,"longitude":2,"timezone":"Europe/Berlin"}
		]}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL)
	point, found, err := g.Lookup(context.Background(), "11211")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected a result")
	}
	want := weather.GeoPoint{Latitude: 40.7093, Longitude: -73.9565, Timezone: "America/New_York"}
	if point != want {
		t.Errorf("expected %+v, got %+v", want, point)
	}
}

func TestGeocoderNoResults(t *testing.T) {
	for _, body := range []string{`{}`, `{"results":[]}`, `{"generationtime_ms":0.5}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		g := NewOpenMeteoGeocoder(srv.Client(), srv.URL)
		_, found, err := g.Lookup(context.Background(), "00000")
		srv.Close()

		if err != nil {
			t.Errorf("body %s: unexpected error: %v", body, err)
		}
		if found {
			t.Errorf("body %s: expected not found", body)
		}
	}
}

func TestGeocoderUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":true,"reason":"bad"}`))
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"results":[`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g := NewOpenMeteoGeocoder(srv.Client(), srv.URL)
			_, found, err := g.Lookup(context.Background(), "11211")
			if !errors.Is(err, weather.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
			if found {
				t.Errorf("expected found=false on failure")
			}
		})
	}
}

func TestGeocoderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 20 * time.Millisecond

	g := NewOpenMeteoGeocoder(client, srv.URL)
	if _, _, err := g.Lookup(context.Background(), "11211"); !errors.Is(err, weather.ErrUpstream) {
		t.Errorf("expected ErrUpstream on timeout, got %v", err)
	}
}

func TestGeocoderRejectsInvalidZip(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL)
	if _, _, err := g.Lookup(context.Background(), "12ab5"); !errors.Is(err, weather.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if called {
		t.Error("no request should be made for an invalid zip")
	}
}
