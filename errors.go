package tapsdk

import (
	"errors"
	"fmt"

	"github.com/roach88/tapsdk/sys"
)

// Error is returned by every wrapper operation that can fail.
//
// Only the field matching Code is meaningful:
//   - INIT_FAILED carries InitResult and the native error message
//   - AUTHORIZE_FAILED carries AuthorizeResult
//   - CLOUD_SAVE_REJECTED carries CloudSaveResult
//   - MALFORMED_INPUT and INVALID_ARGUMENT name the offending field
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	InitResult      sys.InitResult
	AuthorizeResult sys.AuthorizeResult
	CloudSaveResult sys.CloudSaveResult

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes wrapper errors.
type ErrorCode string

const (
	// ErrCodeInitFailed indicates TapSDK_Init returned a non-OK result.
	ErrCodeInitFailed ErrorCode = "INIT_FAILED"

	// ErrCodeNotInitialized indicates a gated operation ran without a live Handle.
	ErrCodeNotInitialized ErrorCode = "NOT_INITIALIZED"

	// ErrCodeAlreadyInitialized indicates Init was called while a Handle is live.
	ErrCodeAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"

	// ErrCodeAuthorizeFailed indicates the authorization flow could not start.
	ErrCodeAuthorizeFailed ErrorCode = "AUTHORIZE_FAILED"

	// ErrCodeCloudSaveRejected indicates a cloud-save request was refused before dispatch.
	ErrCodeCloudSaveRejected ErrorCode = "CLOUD_SAVE_REJECTED"

	// ErrCodeMalformedInput indicates text that cannot cross the C boundary.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	// ErrCodeInvalidArgument indicates a request that violates a documented limit.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeNullPointer indicates the SDK returned a null handle.
	ErrCodeNullPointer ErrorCode = "NULL_POINTER"

	// ErrCodeUnsupportedPlatform indicates the native library cannot be loaded here.
	ErrCodeUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
)

// Sentinels for errors.Is. Matching compares Code only.
var (
	ErrNotInitialized      = &Error{Code: ErrCodeNotInitialized, Message: "SDK not initialized"}
	ErrAlreadyInitialized  = &Error{Code: ErrCodeAlreadyInitialized, Message: "SDK already initialized"}
	ErrUnsupportedPlatform = &Error{Code: ErrCodeUnsupportedPlatform, Message: "TapTap PC SDK is only supported on Windows", Err: sys.ErrUnsupportedPlatform}
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeInitFailed:
		if e.Message == "" {
			return fmt.Sprintf("%s: %s", e.Code, e.InitResult)
		}
		return fmt.Sprintf("%s: %s - %s", e.Code, e.InitResult, e.Message)
	case ErrCodeAuthorizeFailed:
		return fmt.Sprintf("%s: %s", e.Code, e.AuthorizeResult)
	case ErrCodeCloudSaveRejected:
		return fmt.Sprintf("%s: %s", e.Code, e.CloudSaveResult)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the ErrorCode of err, or "" when err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func errNotInitialized() *Error {
	return &Error{Code: ErrCodeNotInitialized, Message: "SDK not initialized"}
}

func malformed(field string, err error) *Error {
	return &Error{
		Code:    ErrCodeMalformedInput,
		Message: fmt.Sprintf("%s contains a NUL byte or invalid UTF-8", field),
		Err:     err,
	}
}

func invalidArgument(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// APIError is the (code, message) pair the SDK attaches to a failed
// asynchronous response. It only ever appears inside an Event.
type APIError struct {
	Code    sys.ErrorCode `json:"code"`
	Message string        `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d %s): %s", int64(e.Code), e.Code, e.Message)
}
