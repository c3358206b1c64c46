package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// ParamValidator is a function type that validates a single query value.
type ParamValidator func(value string) bool

// NotBlank accepts any value with non-whitespace content.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MaxLen returns a ParamValidator that limits the value length in bytes.
func MaxLen(n int) ParamValidator {
	return func(value string) bool {
		return len(value) <= n
	}
}

// ParseRequiredList reads every value of a repeatable query parameter.
// At least one value must be present and each value must satisfy all validators,
// otherwise a 400 is written and false is returned.
func ParseRequiredList(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, validators ...ParamValidator) ([]string, bool) {
	values := r.URL.Query()[key]
	if len(values) == 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("%s url parameter is required", key))
		return nil, false
	}
	for _, v := range values {
		for _, valid := range validators {
			if !valid(v) {
				RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %q", key, v))
				return nil, false
			}
		}
	}
	return values, true
}
