package apperrors

import "errors"

// Common errors
var (
	// Request errors
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidFormat = errors.New("invalid format")
	ErrBadRequest    = errors.New("bad request")

	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Infrastructure errors
	ErrUpstreamFailure    = errors.New("upstream failure")
	ErrPersistenceFailure = errors.New("persistence failure")
)

// Identity errors
var (
	ErrStudentNotFound = NewResourceNotFoundError("Student not found")
	ErrTeacherNotFound = NewResourceNotFoundError("Teacher not found")
	ErrParentNotFound  = NewResourceNotFoundError("Parent not found")
	ErrUserNotFound    = NewResourceNotFoundError("User not found")
	ErrRegnoExists     = NewCustomError(ErrResourceAlreadyExists, "Registration number already exists")
)

// Login and session errors
var (
	ErrMissingLoginFields = NewCustomError(ErrMissingField, "Please provide all required fields")
	ErrInvalidRole        = NewBadRequestError("Invalid role")
	ErrInvalidDateSecret  = NewCustomError(ErrInvalidFormat, "Invalid date format. Please use DDMMYYYY format (e.g., 08052005)")
	ErrBadCredentials     = NewCustomError(ErrInvalidCredentials, "Invalid credentials")
	ErrNoToken            = NewCustomError(ErrUnauthorized, "No token provided")
	ErrBadToken           = NewCustomError(ErrTokenInvalid, "Invalid token")
	ErrExpiredSession     = NewCustomError(ErrTokenExpired, "Token expired")
	ErrAccessDenied       = NewForbiddenError("Access denied")
)

// Lecture summary errors
var (
	ErrLectureSummaryNotFound = NewResourceNotFoundError("Lecture summary not found")
	ErrNoAudioFile            = NewBadRequestError("No audio file uploaded")
	ErrUnsupportedAudioType   = NewCustomError(ErrInvalidFormat, "Invalid file type. Only MP3 and WAV files are allowed.")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) *CustomError {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) *CustomError {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// PublicMessage returns the message meant for API clients, or fallback if err carries none.
func PublicMessage(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
