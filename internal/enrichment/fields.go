package enrichment

import (
	"fmt"

	"atlas/server/internal/rental"
)

// Provider payloads arrive as decoded JSON, so numbers are float64.
// Test doubles may hand in Go ints; both are accepted. Anything else
// counts as absent.

func floatField(record rental.Record, key string) (float64, bool) {
	if record == nil {
		return 0, false
	}
	switch v := record[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func intField(record rental.Record, key string) (int, bool) {
	value, ok := floatField(record, key)
	if !ok {
		return 0, false
	}
	return int(value), true
}

func stringField(record rental.Record, key string) (string, bool) {
	if record == nil {
		return "", false
	}
	switch v := record[key].(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case float64, int:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

func floatOrZero(record rental.Record, key string) float64 {
	value, _ := floatField(record, key)
	return value
}

func intOrZero(record rental.Record, key string) int {
	value, _ := intField(record, key)
	return value
}

func stringOrEmpty(record rental.Record, key string) string {
	value, _ := stringField(record, key)
	return value
}
