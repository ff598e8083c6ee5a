package magisterium

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed invocation so callers can react to the
// category without parsing the human-readable message.
type ErrorKind int

const (
	UnknownHTTPError ErrorKind = iota
	MissingAPIKey
	InvalidConfiguration
	ConnectionFailed
	TimedOut
	TLSVerificationFailed
	TokenLimitExceeded
	InvalidAPIKey
	InvalidBilling
	InvalidTier
	RateLimited
	ServerError
	MalformedResponseBody
)

func (k ErrorKind) String() string {
	switch k {
	case MissingAPIKey:
		return "missing api key"
	case InvalidConfiguration:
		return "invalid configuration"
	case ConnectionFailed:
		return "connection failed"
	case TimedOut:
		return "timed out"
	case TLSVerificationFailed:
		return "tls verification failed"
	case TokenLimitExceeded:
		return "token limit exceeded"
	case InvalidAPIKey:
		return "invalid api key"
	case InvalidBilling:
		return "invalid billing"
	case InvalidTier:
		return "invalid tier"
	case RateLimited:
		return "rate limited"
	case ServerError:
		return "server error"
	case MalformedResponseBody:
		return "malformed response body"
	default:
		return "unknown http error"
	}
}

// APIError is the single error type surfaced by this package. Message is
// already phrased for the end user, including a remediation hint.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// KindOf extracts the ErrorKind from an error returned by this package.
// Errors from elsewhere report UnknownHTTPError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return UnknownHTTPError
}

// parseAPIError maps a non-200 status and its body onto an APIError. The
// body signals are matched case-insensitively, most specific first.
func parseAPIError(status int, raw []byte) *APIError {
	msg := errorMessage(status, raw)
	lower := strings.ToLower(msg)
	kind := UnknownHTTPError
	switch {
	case status == 400 && strings.Contains(lower, "token limit"):
		kind = TokenLimitExceeded
		msg = "Token limit exceeded. Your request is too long. Please shorten your message and try again."
	case status == 400:
		msg = fmt.Sprintf("Bad request: %s", msg)
	case status == 401 && strings.Contains(lower, "api key"):
		kind = InvalidAPIKey
		msg = "Incorrect API key provided. Please check your MAGISTERIUM_API_KEY environment variable."
	case status == 401 && strings.Contains(lower, "billing"):
		kind = InvalidBilling
		msg = "Invalid billing setup. Please check your billing configuration in your account dashboard."
	case status == 401 && strings.Contains(lower, "tier"):
		kind = InvalidTier
		msg = "Invalid service tier. Please contact Magisterium support for assistance."
	case status == 401:
		msg = fmt.Sprintf("Authentication error: %s. Please check your API key.", msg)
	case status == 429:
		kind = RateLimited
		msg = "Rate limit exceeded. You are making too many requests. Please wait and try again, or upgrade your plan."
	case status == 500:
		kind = ServerError
		msg = "Internal server error. This is an issue on Magisterium's end. Please try again later or contact support."
	case status > 500:
		kind = ServerError
		msg = fmt.Sprintf("Server error (%d): %s. Please try again later.", status, msg)
	default:
		msg = fmt.Sprintf("HTTP %d: %s", status, msg)
	}
	return &APIError{Kind: kind, StatusCode: status, Message: msg}
}

func errorMessage(status int, raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d error", status)
}
