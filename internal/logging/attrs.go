package logging

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Field keys whose values are masked before any sink sees them.
var secretFieldKeys = map[string]struct{}{
	"token":         {},
	"bot_token":     {},
	"authorization": {},
	"client_secret": {},
}

func attrsToMap(attrs []slog.Attr) map[string]any {
	values := map[string]any{}
	for _, attr := range attrs {
		if attr.Key == "" {
			continue
		}
		values[attr.Key] = fieldValue(attr.Key, attr.Value.Resolve())
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func fieldValue(key string, value slog.Value) any {
	if value.Kind() == slog.KindGroup {
		return attrsToMap(value.Group())
	}
	if _, secret := secretFieldKeys[strings.ToLower(key)]; secret {
		return MaskSecret(fmt.Sprint(value.Any()))
	}
	switch v := value.Any().(type) {
	case error:
		return v.Error()
	case time.Duration:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}
