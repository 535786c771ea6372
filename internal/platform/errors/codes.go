package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input validation errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Admin account errors
	CodeEmailConflict Code = "EMAIL_CONFLICT"
	CodeNotFound      Code = "NOT_FOUND"

	// Event catalog errors
	CodeSlugConflict Code = "SLUG_CONFLICT"

	// OTP errors
	CodeOTPNotPending Code = "OTP_NOT_PENDING"

	// Session errors
	CodeSessionInvalid Code = "SESSION_INVALID"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidArgument:
		return http.StatusBadRequest

	// Conflict - unique resource constraint
	case CodeEmailConflict,
		CodeSlugConflict:
		return http.StatusConflict

	// Unauthorized - failed or missing authentication
	case CodeSessionInvalid:
		return http.StatusUnauthorized

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	// UnprocessableEntity - state doesn't allow operation
	case CodeOTPNotPending:
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
