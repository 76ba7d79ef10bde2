package protocol

import (
	"errors"
	"fmt"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// MCP server error codes.
const (
	CodeNotFound    = -32001
	CodeRateLimited = -32003
)

// Error is the error member of a JSON-RPC response. Two Errors match under
// errors.Is when their codes are equal.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("mcp: %s (code: %d)", e.Message, e.Code)
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithData returns a copy of e carrying data.
func (e *Error) WithData(data any) *Error {
	c := *e
	c.Data = data
	return &c
}

// Errorf builds an Error with a formatted message.
func Errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError returns the *Error in err's chain, or wraps err as an internal
// error. A nil err yields nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return &Error{Code: CodeInternalError, Message: err.Error()}
}

func NewParseError(msg string) *Error {
	return &Error{Code: CodeParseError, Message: msg}
}

func NewInvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

// NewMethodNotFound reports an unsupported method; msg is usually the
// method name itself.
func NewMethodNotFound(msg string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: msg}
}

func NewInvalidParams(msg string) *Error {
	return &Error{Code: CodeInvalidParams, Message: msg}
}

func NewInternalError(msg string) *Error {
	return &Error{Code: CodeInternalError, Message: msg}
}

func NewNotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func NewRateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}
