package logging

import (
	"log/slog"
	"strings"
)

// redactedValue replaces sensitive attribute values in log output.
const redactedValue = "[REDACTED]"

// sensitiveKeys are attribute keys whose values never appear in logs.
// Matching is case-insensitive on the final key segment.
var sensitiveKeys = map[string]struct{}{
	"api_key":       {},
	"apikey":        {},
	"authorization": {},
	"password":      {},
	"secret":        {},
	"token":         {},
}

// redactAttr is the slog ReplaceAttr hook that masks sensitive values.
func redactAttr(groups []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	if _, ok := sensitiveKeys[key]; ok {
		a.Value = slog.StringValue(redactedValue)
	}
	return a
}
