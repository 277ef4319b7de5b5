package helpers

import (
	"errors"
	"fmt"
	"time"

	"token-pulse/src/logger"
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	ErrUnknownMessage  = errors.New("unknown message type")
	ErrInvalidCategory = errors.New("invalid token category")
	ErrTokenNotFound   = errors.New("token not found")
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type PulseError struct {
	Message string
	Cause   error
}

func (e *PulseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PulseError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As
type ConfigurationError struct{ PulseError }
type ValidationError struct{ PulseError }
type DispatchError struct{ PulseError }
type HandlerError struct{ PulseError }

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{PulseError{Message: message, Cause: cause}}
}

func NewDispatchError(message string, cause error) error {
	return &DispatchError{PulseError{Message: message, Cause: cause}}
}

func NewValidationError(message string, cause error) error {
	return &ValidationError{PulseError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Panic Isolation
// -----------------------------------------------------------------------------

// SafeInvoke runs fn and converts a panic into a *HandlerError.
func SafeInvoke(name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = &HandlerError{PulseError{Message: fmt.Sprintf("%s panicked", name), Cause: cause}}
		}
	}()
	fn()
	return nil
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts fn up to maxRetries times, doubling baseDelay after each failure.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, log *logger.Logger, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		}
		time.Sleep(delay)
	}

	return &PulseError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries), Cause: lastErr}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
