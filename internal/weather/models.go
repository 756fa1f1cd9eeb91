package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Origin tells a caller where a NormalizedResult came from.
type Origin string

const (
	OriginCache Origin = "cache"
	OriginAPI   Origin = "api"
)

// ZipCode is a validated 5-digit US ZIP code. Build one with ParseZip.
type ZipCode string

// GeoPoint is the geocoded location of a ZIP code.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Timezone  string  `json:"timezone" validate:"required,area_location"`
}

// Conditions holds the provider's current-conditions section verbatim.
type Conditions map[string]json.RawMessage

// Series is a time-indexed section of the raw forecast (hourly or daily).
// Every entry of Fields is parallel to Time.
type Series struct {
	Time   []string
	Fields map[string][]json.RawMessage

	// invalid holds the first shape error seen while decoding, reported by
	// the normalizer as malformed data rather than as a transport failure.
	invalid error
}

// UnmarshalJSON splits the provider object into the time axis and the
// remaining field arrays. A section without a "time" key leaves Time nil.
// Values of the wrong shape are recorded, not returned.
func (s *Series) UnmarshalJSON(b []byte) error {
	s.Time = nil
	s.Fields = make(map[string][]json.RawMessage)
	s.invalid = nil

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		s.invalid = fmt.Errorf("section is not an object: %v", err)
		return nil
	}

	for key, val := range raw {
		if key == "time" {
			if isNull(val) {
				continue
			}
			times := []string{}
			if err := json.Unmarshal(val, &times); err != nil {
				s.markInvalid(fmt.Errorf("time: %v", err))
				continue
			}
			s.Time = times
			continue
		}
		var values []json.RawMessage
		if err := json.Unmarshal(val, &values); err != nil {
			s.markInvalid(fmt.Errorf("%s: %v", key, err))
			continue
		}
		s.Fields[key] = values
	}
	return nil
}

func (s *Series) markInvalid(err error) {
	if s.invalid == nil {
		s.invalid = err
	}
}

// RawForecast is the subset of the provider document the normalizer reads.
type RawForecast struct {
	Timezone     string            `json:"timezone"`
	Current      Conditions        `json:"current"`
	CurrentUnits map[string]string `json:"current_units"`
	Hourly       *Series           `json:"hourly"`
	HourlyUnits  map[string]string `json:"hourly_units"`
	Daily        *Series           `json:"daily"`
	DailyUnits   map[string]string `json:"daily_units"`
}

// NormalizedResult is what callers receive and what the cache stores.
type NormalizedResult struct {
	CurrentWeather Conditions        `json:"current_weather"`
	HourlyWeather  []DayBucket       `json:"hourly_weather"`
	DailyWeather   []DayForecast     `json:"daily_weather"`
	Units          map[string]string `json:"units"`
	Timezone       string            `json:"timezone"`
}

// DayBucket groups the hourly records of one calendar day.
type DayBucket struct {
	Day   string       `json:"day"`
	Hours []HourRecord `json:"hours"`
}

// HourRecord is one entry of the hourly series. It serializes as a flat
// object: {"time": ..., "<field>": value, ...}.
type HourRecord struct {
	Time   string
	Values map[string]json.RawMessage
}

func (h HourRecord) MarshalJSON() ([]byte, error) {
	return marshalFlat(h.Time, h.Values, nil)
}

func (h *HourRecord) UnmarshalJSON(b []byte) error {
	t, values, err := unmarshalFlat(b)
	if err != nil {
		return err
	}
	h.Time, h.Values = t, values
	return nil
}

// DayForecast is one retained entry of the daily series.
type DayForecast struct {
	Time              string
	Values            map[string]json.RawMessage
	PrecipitationType string
}

func (d DayForecast) MarshalJSON() ([]byte, error) {
	precip, err := json.Marshal(d.PrecipitationType)
	if err != nil {
		return nil, err
	}
	return marshalFlat(d.Time, d.Values, precip)
}

func (d *DayForecast) UnmarshalJSON(b []byte) error {
	t, values, err := unmarshalFlat(b)
	if err != nil {
		return err
	}
	d.PrecipitationType = ""
	if raw, ok := values[precipitationTypeKey]; ok {
		if err := json.Unmarshal(raw, &d.PrecipitationType); err != nil {
			return fmt.Errorf("%s: %w", precipitationTypeKey, err)
		}
		delete(values, precipitationTypeKey)
	}
	d.Time, d.Values = t, values
	return nil
}

const precipitationTypeKey = "precipitation_type"

// marshalFlat writes "time" first, the values in key order, then an
// optional precipitation_type.
func marshalFlat(t string, values map[string]json.RawMessage, precip json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString(`{"time":`)
	tb, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	buf.Write(tb)

	for _, k := range keys {
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		v := values[k]
		if len(v) == 0 {
			v = json.RawMessage("null")
		}
		buf.Write(v)
	}

	if precip != nil {
		buf.WriteString(`,"` + precipitationTypeKey + `":`)
		buf.Write(precip)
	}
	buf.WriteByte('}')

	// Compact through the encoder so embedded raw values are validated.
	var out bytes.Buffer
	if err := json.Compact(&out, buf.Bytes()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func unmarshalFlat(b []byte) (string, map[string]json.RawMessage, error) {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(b, &values); err != nil {
		return "", nil, err
	}
	if values == nil {
		values = map[string]json.RawMessage{}
	}

	var t string
	if raw, ok := values["time"]; ok {
		if err := json.Unmarshal(raw, &t); err != nil {
			return "", nil, fmt.Errorf("time: %w", err)
		}
		delete(values, "time")
	}
	return t, values, nil
}

func isNull(b json.RawMessage) bool {
	return len(bytes.TrimSpace(b)) == 0 || bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
