package weather

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// precipitationFields is the fixed comparison order for the predominant
// precipitation type. Earlier entries win ties.
var precipitationFields = []string{"rain_sum", "showers_sum", "snowfall_sum"}

// Normalize reshapes a raw provider forecast into the caller-facing result.
// Daily entries before now's UTC calendar date are dropped.
func Normalize(raw RawForecast, now time.Time) (NormalizedResult, error) {
	hourly, err := GroupHourly(raw.Hourly)
	if err != nil {
		return NormalizedResult{}, err
	}

	daily, err := ShapeDaily(raw.Daily, now.UTC().Format("2006-01-02"))
	if err != nil {
		return NormalizedResult{}, err
	}

	return NormalizedResult{
		CurrentWeather: raw.Current,
		HourlyWeather:  hourly,
		DailyWeather:   daily,
		Units:          MergeUnits(raw.HourlyUnits, raw.DailyUnits, raw.CurrentUnits),
		Timezone:       raw.Timezone,
	}, nil
}

// GroupHourly buckets the hourly series by the YYYY-MM-DD prefix of each
// timestamp, keeping first-seen day order. No timezone conversion is done.
func GroupHourly(s *Series) ([]DayBucket, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: missing hourly series", ErrMalformedData)
	}
	if s.invalid != nil {
		return nil, fmt.Errorf("%w: hourly series: %v", ErrMalformedData, s.invalid)
	}
	if s.Time == nil {
		return nil, fmt.Errorf("%w: missing hourly series", ErrMalformedData)
	}
	if err := checkParallel("hourly", s); err != nil {
		return nil, err
	}

	buckets := make([]DayBucket, 0)
	index := make(map[string]int)
	for i, ts := range s.Time {
		day := dayOf(ts)
		pos, ok := index[day]
		if !ok {
			pos = len(buckets)
			index[day] = pos
			buckets = append(buckets, DayBucket{Day: day, Hours: []HourRecord{}})
		}
		buckets[pos].Hours = append(buckets[pos].Hours, HourRecord{
			Time:   ts,
			Values: row(s, i),
		})
	}
	return buckets, nil
}

// ShapeDaily copies each daily entry on or after today (YYYY-MM-DD) and
// labels it with its predominant precipitation type.
func ShapeDaily(s *Series, today string) ([]DayForecast, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: missing daily series", ErrMalformedData)
	}
	if s.invalid != nil {
		return nil, fmt.Errorf("%w: daily series: %v", ErrMalformedData, s.invalid)
	}
	if s.Time == nil {
		return nil, fmt.Errorf("%w: missing daily series", ErrMalformedData)
	}
	if err := checkParallel("daily", s); err != nil {
		return nil, err
	}

	days := make([]DayForecast, 0, len(s.Time))
	for i, ts := range s.Time {
		if dayOf(ts) < today {
			continue
		}
		values := row(s, i)
		kind, err := predominantPrecipitation(values)
		if err != nil {
			return nil, err
		}
		days = append(days, DayForecast{
			Time:              ts,
			Values:            values,
			PrecipitationType: kind,
		})
	}
	return days, nil
}

// MergeUnits folds unit maps left to right; later maps win on collisions.
func MergeUnits(sections ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, units := range sections {
		for k, v := range units {
			merged[k] = v
		}
	}
	return merged
}

func predominantPrecipitation(values map[string]json.RawMessage) (string, error) {
	best := precipitationFields[0]
	bestVal := 0.0
	for i, field := range precipitationFields {
		v, err := numberOrZero(values[field])
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrMalformedData, field, err)
		}
		if i == 0 || v > bestVal {
			best, bestVal = field, v
		}
	}
	return strings.TrimSuffix(best, "_sum"), nil
}

func numberOrZero(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkParallel(section string, s *Series) error {
	for field, values := range s.Fields {
		if len(values) != len(s.Time) {
			return fmt.Errorf("%w: %s field %s has %d values for %d timestamps",
				ErrMalformedData, section, field, len(values), len(s.Time))
		}
	}
	return nil
}

func row(s *Series, i int) map[string]json.RawMessage {
	values := make(map[string]json.RawMessage, len(s.Fields))
	for field, series := range s.Fields {
		values[field] = series[i]
	}
	return values
}

func dayOf(ts string) string {
	if len(ts) < 10 {
		return ts
	}
	return ts[:10]
}
