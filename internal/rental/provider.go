package rental

import "errors"

// ErrUpstream marks any non-recoverable provider failure: network
// errors, 5xx/4xx statuses, malformed payloads, retry exhaustion.
// Callers match it with errors.Is; the underlying cause stays in the
// wrapped message.
var ErrUpstream = errors.New("rental provider error")

// Record is a decoded provider response, returned as-is. Field
// validation happens in the enrichment layer via presence checks.
type Record = map[string]interface{}

// Provider is the capability surface any rental-data vendor must
// implement. All three operations are keyed by a free-text address.
type Provider interface {
	// GetPropertyDetails returns static characteristics: bedrooms,
	// bathrooms, square footage, year built, source id, estimated value.
	GetPropertyDetails(address string) (Record, error)

	// GetRentEstimate returns the current rent estimate with a
	// low/high band and a confidence score.
	GetRentEstimate(address string) (Record, error)

	// GetRentComps returns up to limit comparable listings, unordered.
	GetRentComps(address string, limit int) ([]Record, error)
}
