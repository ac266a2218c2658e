package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies provider failures for fallback and retry decisions
type Kind string

const (
	KindQuotaExceeded      Kind = "quota_exceeded"
	KindExtractionFailed   Kind = "extraction_failed"
	KindMalformedResponse  Kind = "malformed_response"
	KindAuthFailed         Kind = "auth_failed"
	KindModelUnavailable   Kind = "model_unavailable"
	KindProviderOverloaded Kind = "provider_overloaded"
	KindMissingCredential  Kind = "missing_credential"
	KindUnknown            Kind = "unknown"
)

// Error is a classified provider failure with a user-readable message
type Error struct {
	Kind     Kind
	Provider string
	Op       string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e.Kind)
	}
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func defaultMessage(kind Kind) string {
	switch kind {
	case KindQuotaExceeded:
		return "quota exceeded, try again later"
	case KindExtractionFailed:
		return "text extraction failed"
	case KindMalformedResponse:
		return "provider returned a response that could not be parsed"
	case KindAuthFailed:
		return "API key was rejected"
	case KindModelUnavailable:
		return "model is not available"
	case KindProviderOverloaded:
		return "provider is overloaded, try again later"
	case KindMissingCredential:
		return "missing API key"
	default:
		return "request failed"
	}
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) && pe.Kind != "" {
		return pe.Kind
	}
	return KindUnknown
}

type statusCoder interface {
	HTTPStatus() int
}

// StatusCode extracts an HTTP status code from err, or 0
func StatusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

func grpcCode(err error) codes.Code {
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Unknown
}

// IsQuota reports whether err is a rate limit or quota exhaustion failure.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	var pe *Error
	if errors.As(err, &pe) && pe.Kind != "" && pe.Kind != KindUnknown {
		return pe.Kind == KindQuotaExceeded
	}
	if StatusCode(err) == http.StatusTooManyRequests {
		return true
	}
	if grpcCode(err) == codes.ResourceExhausted {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}

// Classify wraps err in an *Error carrying its Kind. Already classified
// errors are returned unchanged.
func Classify(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) && pe.Kind != "" && pe.Kind != KindUnknown {
		return err
	}
	return &Error{Kind: classify(err), Provider: provider, Op: op, Err: err}
}

func classify(err error) Kind {
	if IsQuota(err) {
		return KindQuotaExceeded
	}

	switch StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthFailed
	case http.StatusNotFound:
		return KindModelUnavailable
	case http.StatusInternalServerError, http.StatusServiceUnavailable, 529:
		return KindProviderOverloaded
	}

	switch grpcCode(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return KindAuthFailed
	case codes.NotFound:
		return KindModelUnavailable
	case codes.Unavailable:
		return KindProviderOverloaded
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key not valid"), strings.Contains(msg, "invalid api key"):
		return KindAuthFailed
	case strings.Contains(msg, "model not found"), strings.Contains(msg, "is not found"):
		return KindModelUnavailable
	case strings.Contains(msg, "overloaded"):
		return KindProviderOverloaded
	}
	return KindUnknown
}
