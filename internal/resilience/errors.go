package resilience

import (
	"errors"
	"net"
	"net/textproto"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry.
type TransientError struct {
	Err  error
	Code int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional SMTP reply code.
func NewTransientError(err error, code int) *TransientError {
	return &TransientError{Err: err, Code: code}
}

// IsTransient reports whether err (or any error in its chain) is a
// TransientError, a 4xx SMTP reply, or a common network failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var reply *textproto.Error
	if errors.As(err, &reply) {
		return IsTransientSMTPCode(reply.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"tls handshake timeout",
		"i/o timeout",
		"eof",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsPermanent reports whether err carries a 5xx SMTP reply, which no retry
// will fix (bad credentials, rejected mailbox).
func IsPermanent(err error) bool {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return reply.Code >= 500 && reply.Code < 600
	}
	return false
}

// IsTransientSMTPCode reports whether an SMTP reply code is a transient
// negative completion (4yz).
func IsTransientSMTPCode(code int) bool {
	return code >= 400 && code < 500
}
