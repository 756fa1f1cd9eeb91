package weather

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// fixedNow is 2025-06-16 in UTC.
var fixedNow = time.Date(2025, 6, 16, 14, 30, 0, 0, time.UTC)

const rawFixture = `{
	"timezone": "America/New_York",
	"latitude": 40.6561,
	"hourly": {
		"time": ["2025-06-16T10:00", "2025-06-16T11:00", "2025-06-17T00:00"],
		"temperature_2m": [22.1, 23.0, 18.4],
		"rain": [0.1, 0.0, 0.0]
	},
	"daily": {
		"time": ["2025-06-15", "2025-06-16", "2025-06-17"],
		"temperature_2m_max": [24.0, 26.0, 28.5],
		"sunrise": ["2025-06-15T05:24", "2025-06-16T05:24", "2025-06-17T05:24"],
		"rain_sum": [3.0, 0.0, 0.0],
		"showers_sum": [0.0, 0.0, 1.5],
		"snowfall_sum": [0.0, 0.0, 0.0]
	},
	"current": {"temperature_2m": 23.5, "rain": 0.0},
	"hourly_units": {"temperature_2m": "°C", "rain": "mm"},
	"daily_units": {"temperature_2m_max": "°C", "rain_sum": "mm", "rain": "inch"},
	"current_units": {"temperature_2m": "°F"}
}`

func decodeRaw(t *testing.T, doc string) RawForecast {
	t.Helper()
	var raw RawForecast
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return raw
}

func TestGroupHourlyBucketsByDay(t *testing.T) {
	raw := decodeRaw(t, rawFixture)

	buckets, err := GroupHourly(raw.Hourly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(buckets) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(buckets))
	}
	if buckets[0].Day != "2025-06-16" || len(buckets[0].Hours) != 2 {
		t.Errorf("expected 2025-06-16 with 2 hours, got %s with %d", buckets[0].Day, len(buckets[0].Hours))
	}
	if buckets[1].Day != "2025-06-17" || len(buckets[1].Hours) != 1 {
		t.Errorf("expected 2025-06-17 with 1 hour, got %s with %d", buckets[1].Day, len(buckets[1].Hours))
	}

	second := buckets[0].Hours[1]
	if second.Time != "2025-06-16T11:00" {
		t.Errorf("expected chronological order within a day, got %s", second.Time)
	}
	if string(second.Values["temperature_2m"]) != "23.0" {
		t.Errorf("expected temperature_2m 23.0, got %s", second.Values["temperature_2m"])
	}
	if _, ok := second.Values["time"]; ok {
		t.Errorf("time must not be duplicated into values")
	}
}

func TestGroupHourlyKeepsPastDays(t *testing.T) {
	s := &Series{
		Time:   []string{"2020-01-01T00:00", "2020-01-02T00:00"},
		Fields: map[string][]json.RawMessage{},
	}
	buckets, err := GroupHourly(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 2 {
		t.Errorf("expected hourly grouping to keep all days, got %d buckets", len(buckets))
	}
}

func TestShapeDailyDropsDaysBeforeToday(t *testing.T) {
	raw := decodeRaw(t, rawFixture)

	days, err := ShapeDaily(raw.Daily, "2025-06-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(days) != 2 {
		t.Fatalf("expected today and tomorrow, got %d entries", len(days))
	}
	if days[0].Time != "2025-06-16" || days[1].Time != "2025-06-17" {
		t.Errorf("unexpected days %s, %s", days[0].Time, days[1].Time)
	}
	if string(days[1].Values["sunrise"]) != `"2025-06-17T05:24"` {
		t.Errorf("expected sunrise copied verbatim, got %s", days[1].Values["sunrise"])
	}
}

func TestPrecipitationType(t *testing.T) {
	tests := []struct {
		name                string
		rain, showers, snow string
		want                string
	}{
		{name: "all zero resolves to rain", rain: "0", showers: "0", snow: "0", want: "rain"},
		{name: "showers largest", rain: "0.5", showers: "1.5", snow: "0", want: "showers"},
		{name: "snowfall largest", rain: "0.1", showers: "0.2", snow: "4.2", want: "snowfall"},
		{name: "tie between showers and snowfall", rain: "0", showers: "2", snow: "2", want: "showers"},
		{name: "null counts as zero", rain: "null", showers: "null", snow: "0.3", want: "snowfall"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Series{
				Time: []string{"2025-06-16"},
				Fields: map[string][]json.RawMessage{
					"rain_sum":     {json.RawMessage(tt.rain)},
					"showers_sum":  {json.RawMessage(tt.showers)},
					"snowfall_sum": {json.RawMessage(tt.snow)},
				},
			}
			days, err := ShapeDaily(s, "2025-06-16")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := days[0].PrecipitationType; got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMergeUnitsCurrentWins(t *testing.T) {
	raw := decodeRaw(t, rawFixture)

	units := MergeUnits(raw.HourlyUnits, raw.DailyUnits, raw.CurrentUnits)

	if units["temperature_2m"] != "°F" {
		t.Errorf("expected current units to win, got %s", units["temperature_2m"])
	}
	if units["rain"] != "inch" {
		t.Errorf("expected daily units to override hourly, got %s", units["rain"])
	}
	if units["rain_sum"] != "mm" {
		t.Errorf("expected rain_sum mm, got %s", units["rain_sum"])
	}
}

func TestNormalizeProjectsFiveKeys(t *testing.T) {
	raw := decodeRaw(t, rawFixture)

	result, err := Normalize(raw, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"current_weather", "daily_weather", "hourly_weather", "units", "timezone"}
	if len(top) != len(want) {
		t.Errorf("expected %d top-level keys, got %d: %s", len(want), len(top), data)
	}
	for _, k := range want {
		if _, ok := top[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
	if result.Timezone != "America/New_York" {
		t.Errorf("unexpected timezone %s", result.Timezone)
	}
	if string(result.CurrentWeather["temperature_2m"]) != "23.5" {
		t.Errorf("expected current section verbatim, got %s", result.CurrentWeather["temperature_2m"])
	}
}

func TestNormalizeMissingSections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing hourly", doc: `{"daily": {"time": ["2025-06-16"]}}`},
		{name: "null hourly", doc: `{"hourly": null, "daily": {"time": ["2025-06-16"]}}`},
		{name: "hourly without time", doc: `{"hourly": {"rain": []}, "daily": {"time": []}}`},
		{name: "missing daily", doc: `{"hourly": {"time": ["2025-06-16T00:00"]}}`},
		{name: "daily without time", doc: `{"hourly": {"time": []}, "daily": {"rain_sum": [1]}}`},
		{name: "ragged field", doc: `{"hourly": {"time": ["a", "b"], "rain": [1]}, "daily": {"time": []}}`},
		{name: "scalar field", doc: `{"hourly": {"time": ["a"], "rain": 5}, "daily": {"time": []}}`},
		{name: "scalar time", doc: `{"hourly": {"time": []}, "daily": {"time": "2025-06-16"}}`},
		{name: "section is an array", doc: `{"hourly": [1, 2], "daily": {"time": []}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(decodeRaw(t, tt.doc), fixedNow)
			if !errors.Is(err, ErrMalformedData) {
				t.Fatalf("expected ErrMalformedData, got %v", err)
			}
		})
	}
}

func TestNormalizeEmptySeries(t *testing.T) {
	result, err := Normalize(decodeRaw(t, `{"hourly": {"time": []}, "daily": {"time": []}}`), fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HourlyWeather == nil || result.DailyWeather == nil {
		t.Errorf("expected empty, non-nil series")
	}
}
