package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

type ErrorKind int

const (
	KindNetwork ErrorKind = iota + 1
	KindValidation
	KindNotFound
	KindTimedOut
	KindUnauthorized
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTimedOut:
		return "timed_out"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// RemoteLedgerError is returned by every Client method that fails.
// Status is 0 when the request never produced a response.
type RemoteLedgerError struct {
	Op      string
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *RemoteLedgerError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("ledger %s: %s (%d): %s", e.Op, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("ledger %s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *RemoteLedgerError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same request could succeed.
func (e *RemoteLedgerError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimedOut, KindServer:
		return true
	}
	return false
}

// KindOf returns the kind of a ledger error, or 0 for anything else.
func KindOf(err error) ErrorKind {
	var le *RemoteLedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

func validationError(op string, err error) *RemoteLedgerError {
	return &RemoteLedgerError{Op: op, Kind: KindValidation, Message: err.Error(), Err: err}
}

// transportError classifies a failure that happened before any response.
func transportError(op string, err error) *RemoteLedgerError {
	kind := KindNetwork
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = KindTimedOut
	}
	return &RemoteLedgerError{Op: op, Kind: kind, Message: err.Error(), Err: err}
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimedOut
	case status >= 400 && status < 500:
		return KindValidation
	}
	return KindServer
}

// responseError builds the error for a non-2xx response. The server message
// is taken from an "error" or "detail" field when the body carries one.
func responseError(op string, status int, body []byte) *RemoteLedgerError {
	msg := fmt.Sprintf("remote ledger request failed with status %d", status)

	var parsed struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch d := parsed.Detail.(type) {
		case string:
			if strings.TrimSpace(d) != "" {
				msg = d
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				msg = string(b)
			}
		}
		if strings.TrimSpace(parsed.Error) != "" {
			msg = parsed.Error
		}
	}
	return &RemoteLedgerError{Op: op, Kind: kindForStatus(status), Status: status, Message: msg}
}
