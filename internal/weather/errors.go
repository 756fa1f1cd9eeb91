package weather

import "errors"

var (
	// ErrValidation marks input that failed a shape check (ZIP, coordinates,
	// timezone). It is never retried.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when the geocoder knows no location for a ZIP.
	ErrNotFound = errors.New("zip code not found")

	// ErrUpstream covers network failures, timeouts, non-2xx responses and
	// undecodable bodies from the geocoding or forecast provider.
	ErrUpstream = errors.New("upstream request failed")

	// ErrMalformedData means the provider answered successfully but the
	// payload lacks what the normalizer needs.
	ErrMalformedData = errors.New("malformed upstream data")

	// ErrStore means the cache or rate-limit backing store is unreachable.
	ErrStore = errors.New("store unavailable")
)
