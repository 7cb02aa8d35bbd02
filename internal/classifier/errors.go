package classifier

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("provider request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type emptyContentError struct {
	Op         string
	StopReason string
	Refusal    string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (stop_reason=%q, refusal=%q)", e.Op, e.StopReason, e.Refusal)
}

// statusCode extracts the HTTP status from either backend's error types.
func statusCode(err error) int {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// errorHint suggests the operator's next step for a failed request.
func errorHint(err error) string {
	var empty *emptyContentError
	if errors.As(err, &empty) {
		return "the provider returned no usable text; try another model"
	}
	switch code := statusCode(err); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return "check the API key for the selected provider"
	case code == http.StatusTooManyRequests:
		return "raise organizer.request_interval_ms to slow down requests"
	case code >= http.StatusInternalServerError:
		return "the provider is having problems; retry the run later"
	case code == http.StatusNotFound || code == http.StatusBadRequest:
		return "check the configured model and base_url"
	}
	return "check network connectivity to the provider"
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizeSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
