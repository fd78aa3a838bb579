package ir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes record errors.
type ErrorCode string

const (
	// CodeAlreadyExists indicates a create against an occupied address.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeAlreadyInitialized indicates a second Initialize. It also matches
	// ErrAlreadyExists.
	CodeAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"

	// CodeNotFound indicates a read or reset against a record never created.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeNotInitialized indicates an admin-gated operation before Initialize.
	CodeNotInitialized ErrorCode = "NOT_INITIALIZED"

	// CodeUnauthorized indicates a privileged call by a non-admin identity.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeSizeMismatch indicates a blob that does not match its fixed layout.
	CodeSizeMismatch ErrorCode = "SIZE_MISMATCH"
)

// Sentinels for errors.Is matching against *RecordError.
var (
	ErrAlreadyExists      = errors.New("record already exists")
	ErrAlreadyInitialized = errors.New("registry already initialized")
	ErrNotFound           = errors.New("record not found")
	ErrNotInitialized     = errors.New("registry not initialized")
	ErrUnauthorized       = errors.New("caller is not authorized")
	ErrSizeMismatch       = errors.New("record size mismatch")
)

// RecordError is the typed failure of a store primitive or registry
// operation. Exactly one is reported per failed operation.
type RecordError struct {
	// Code identifies the failed precondition.
	Code ErrorCode

	// Op names the operation or primitive that failed.
	Op string

	// Address is the record involved, if any.
	Address Address

	// Message is a human-readable description.
	Message string
}

// NewRecordError creates a RecordError.
func NewRecordError(code ErrorCode, op string, addr Address, message string) *RecordError {
	return &RecordError{Code: code, Op: op, Address: addr, Message: message}
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	msg := e.Message
	if msg == "" {
		if s := sentinelFor(e.Code); s != nil {
			msg = s.Error()
		}
	}
	if !e.Address.IsZero() {
		return fmt.Sprintf("%s: %s: %s (address=%s)", e.Op, e.Code, msg, e.Address)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

// Is matches the sentinel for the error's code.
func (e *RecordError) Is(target error) bool {
	if e.Code == CodeAlreadyInitialized && target == ErrAlreadyExists {
		return true
	}
	s := sentinelFor(e.Code)
	return s != nil && s == target
}

// CodeOf returns the code of the first RecordError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var re *RecordError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// Err returns the sentinel matched by errors carrying code, or nil for an
// unknown code.
func (c ErrorCode) Err() error {
	return sentinelFor(c)
}

func sentinelFor(code ErrorCode) error {
	switch code {
	case CodeAlreadyExists:
		return ErrAlreadyExists
	case CodeAlreadyInitialized:
		return ErrAlreadyInitialized
	case CodeNotFound:
		return ErrNotFound
	case CodeNotInitialized:
		return ErrNotInitialized
	case CodeUnauthorized:
		return ErrUnauthorized
	case CodeSizeMismatch:
		return ErrSizeMismatch
	}
	return nil
}
