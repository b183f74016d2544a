// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resilience

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
)

// ErrMalformedResponse marks model output that could not be parsed into the
// expected structure. It is retried like a transport failure.
var ErrMalformedResponse = eris.New("malformed model response")

// TransientError marks an error as safe to retry.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. statusCode may be zero.
func Transient(err error, statusCode int) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err, StatusCode: statusCode}
}

// Malformed wraps a parse failure so that it is retried and still matches
// ErrMalformedResponse.
func Malformed(err error) error {
	return Transient(eris.Wrap(ErrMalformedResponse, err.Error()), 0)
}

// IsTransient reports whether err is worth retrying: an explicit
// TransientError, a malformed response, a retryable Anthropic API status,
// a network timeout, or a reset/refused connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) || errors.Is(err, ErrMalformedResponse) {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return IsTransientStatus(apiErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"tls handshake timeout",
		"server closed idle connection",
		"overloaded",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientStatus reports whether an HTTP status is a rate limit or a
// temporary server failure. 529 is Anthropic's overloaded status.
func IsTransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout, 529:
		return true
	}
	return false
}
