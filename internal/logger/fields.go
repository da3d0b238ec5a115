package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRole is the structured log field key for the screened role.
	FieldRole = "role"
	// FieldLocation is the structured log field key for the location filter.
	FieldLocation = "location"
	// FieldThreshold is the structured log field key for the pass threshold.
	FieldThreshold = "threshold"
	// FieldFile is the structured log field key for a résumé file name.
	FieldFile = "file"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ScreeningFields describes a screening run. Empty values are skipped.
func ScreeningFields(role, location string, threshold float64) []zap.Field {
	return StringFields(
		StringField{Key: FieldRole, Value: role},
		StringField{Key: FieldLocation, Value: location},
		StringField{Key: FieldThreshold, Value: strconv.FormatFloat(threshold, 'f', -1, 64)},
	)
}

// ForRun returns logger enriched with the screening run fields.
func ForRun(logger *zap.Logger, role, location string, threshold float64) *zap.Logger {
	return WithFields(logger, ScreeningFields(role, location, threshold)...)
}
