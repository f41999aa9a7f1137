package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

// HTTPError carries a non-2xx backend response. The raw body is kept so
// callers can extract structured validation messages.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	if msg := extractMessage(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("backend returned HTTP %d", e.Status)
}

// IsAuthError reports whether err is a 401 or 403 backend response.
func IsAuthError(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	return he.Status == http.StatusUnauthorized || he.Status == http.StatusForbidden
}

// IsNetworkError reports whether err is a transport failure, i.e. no
// response was received at all. Local validation failures never left the
// process and are excluded.
func IsNetworkError(err error) bool {
	var he *HTTPError
	var verrs validator.ValidationErrors
	return err != nil && !errors.As(err, &he) && !errors.As(err, &verrs)
}

// IsValidationError reports whether err is a local request-validation
// failure, raised before anything was sent.
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// IsServerError reports whether err is a 5xx backend response.
func IsServerError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status >= http.StatusInternalServerError
}

// IsClientError reports whether err is a 4xx backend response.
func IsClientError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status >= 400 && he.Status < 500
}

// Message turns any pipeline error into a user-presentable string.
// Backend messages pass through verbatim; transport failures map to a
// connectivity hint; everything else falls back to the supplied default.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var he *HTTPError
	if !errors.As(err, &he) {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var parts []string
			for _, fe := range verrs {
				parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
			}
			return strings.Join(parts, ", ")
		}
		if strings.Contains(err.Error(), "context deadline exceeded") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return "Request timeout. Please check your connection and try again."
		}
		return "Network error. Please check your internet connection."
	}

	if msg := extractMessage(he.Body); msg != "" {
		return msg
	}
	return fallback
}

// extractMessage pulls a human-readable message out of a backend error
// body: a top-level "message", Spring-style "errors"/"fieldErrors" arrays
// joined into one string, or a bare string body.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	if msg := gjson.GetBytes(body, "message"); msg.Exists() {
		return msg.String()
	}

	for _, key := range []string{"errors", "fieldErrors"} {
		arr := gjson.GetBytes(body, key)
		if !arr.IsArray() {
			continue
		}
		var parts []string
		arr.ForEach(func(_, item gjson.Result) bool {
			if m := item.Get("defaultMessage"); m.Exists() {
				parts = append(parts, m.String())
			} else if m := item.Get("message"); m.Exists() {
				parts = append(parts, m.String())
			}
			return true
		})
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}

	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	return ""
}
