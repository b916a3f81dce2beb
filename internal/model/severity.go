package model

import (
	"strconv"
	"strings"
)

// Severity is the normalized severity of a result, derived from whatever
// structured fields the record happens to carry.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Field names probed for an HTTP-status-like value.
var statusFields = []string{"status", "status_code", "http_status", "response_status"}

// Field names whose mere presence marks an exception.
var exceptionFields = []string{"exception", "exc_info", "stack_trace", "traceback"}

// Field names probed for an explicit severity label.
var levelFields = []string{"level", "severity", "log_level", "loglevel"}

// DeriveSeverity classifies a result. Precedence: HTTP status (>=500 error,
// >=400 warning), then an explicit exception marker, then a severity/level
// field matched case-insensitively, else info.
func DeriveSeverity(r SearchResult) Severity {
	for _, f := range statusFields {
		if code, ok := numericField(r.Field(f)); ok {
			switch {
			case code >= 500:
				return SeverityError
			case code >= 400:
				return SeverityWarning
			}
			// A healthy status does not settle anything: an exception or
			// level field on the same record still decides below.
		}
	}

	for _, f := range exceptionFields {
		if v := r.Field(f); v != nil {
			if s, ok := v.(string); !ok || s != "" {
				return SeverityError
			}
		}
	}

	for _, f := range levelFields {
		v := r.Field(f)
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "error", "fatal", "critical", "err":
			return SeverityError
		case "warn", "warning":
			return SeverityWarning
		case "":
			continue
		default:
			return SeverityInfo
		}
	}

	return SeverityInfo
}

// numericField coerces the loosely-typed values JSON decoding produces
// (float64, string, json.Number-ish) into an int.
func numericField(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
