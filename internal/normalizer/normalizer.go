// Package normalizer maps provider-native payment results and notification
// payloads into their canonical shapes. Status mappings are explicit closed
// tables per provider, never inferred.
package normalizer

import (
	"strconv"

	"github.com/zoobzio/clockz"

	"payment-gateway/internal/logging"
)

type Normalizer struct {
	Logger logging.Logger
	Clock  clockz.Clock
}

func New(logger logging.Logger, clock clockz.Clock) *Normalizer {
	return &Normalizer{Logger: logger, Clock: clock}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// firstString probes alternate field names in priority order.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringField(m, key); s != "" {
			return s
		}
	}
	return ""
}

func objectField(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

// numberField reads a numeric value that providers send either as a JSON
// number or a decimal string.
func numberField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
