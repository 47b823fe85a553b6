package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeBotError          = "BOT_ERROR"
	CodeAPIError          = "API_ERROR"
	CodeValidation        = "VALIDATION_ERROR"
	CodeCache             = "CACHE_ERROR"
	CodeDatabase          = "DATABASE_ERROR"
	CodeService           = "SERVICE_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
	CodeNotRegistered     = "NOT_REGISTERED"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeTransient         = "TRANSIENT"
	CodeStorageCorruption = "STORAGE_CORRUPTION"
)

// Sentinels returned (wrapped) by stores. BotError.Is matches on Code, so any
// BotError carrying the same code satisfies errors.Is against these.
var (
	ErrNotFound          = &BotError{Message: "not found", Code: CodeNotFound, StatusCode: 404}
	ErrAlreadyRegistered = &BotError{Message: "already registered", Code: CodeAlreadyRegistered, StatusCode: 409}
	ErrAlreadyExists     = &BotError{Message: "already exists", Code: CodeAlreadyExists, StatusCode: 409}
	ErrTransient         = &BotError{Message: "storage temporarily unavailable", Code: CodeTransient, StatusCode: 503}
	ErrStorageCorruption = &BotError{Message: "storage corruption", Code: CodeStorageCorruption, StatusCode: 500}
)

type BotError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a BotError with the same code.
func (e *BotError) Is(target error) bool {
	t, ok := target.(*BotError)
	if !ok || t == nil {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// As lets typed wrappers (CacheError, DatabaseError, ...) surface their embedded
// BotError to errors.As.
func (e *BotError) As(target any) bool {
	if t, ok := target.(**BotError); ok {
		*t = e
		return true
	}
	return false
}

func NewBotError(message, code string, statusCode int, context map[string]any) *BotError {
	return &BotError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *BotError) WithCause(cause error) *BotError {
	e.Cause = cause
	return e
}

// NotFound builds a NOT_FOUND error for the given entity and key.
func NotFound(entity string, key any) *BotError {
	return &BotError{
		Message:    fmt.Sprintf("%s not found", entity),
		Code:       CodeNotFound,
		StatusCode: 404,
		Context:    map[string]any{"entity": entity, "key": key},
	}
}

// AlreadyRegistered builds an ALREADY_REGISTERED error for a member id.
func AlreadyRegistered(memberID int64) *BotError {
	return &BotError{
		Message:    "member already registered",
		Code:       CodeAlreadyRegistered,
		StatusCode: 409,
		Context:    map[string]any{"member_id": memberID},
	}
}

// AlreadyExists builds an ALREADY_EXISTS error for a named entity.
func AlreadyExists(entity, name string) *BotError {
	return &BotError{
		Message:    fmt.Sprintf("%s already exists", entity),
		Code:       CodeAlreadyExists,
		StatusCode: 409,
		Context:    map[string]any{"entity": entity, "name": name},
	}
}

// NewTransientError marks a failed storage operation as safe to retry.
func NewTransientError(operation string, cause error) *BotError {
	return &BotError{
		Message:    fmt.Sprintf("%s failed", operation),
		Code:       CodeTransient,
		StatusCode: 503,
		Context:    map[string]any{"operation": operation},
		Cause:      cause,
	}
}

// NewCorruptionError reports a violated storage invariant. It is never retried.
func NewCorruptionError(message string, context map[string]any) *BotError {
	return &BotError{
		Message:    message,
		Code:       CodeStorageCorruption,
		StatusCode: 500,
		Context:    context,
	}
}

type APIError struct {
	*BotError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*BotError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*BotError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type DatabaseError struct {
	*BotError
	Operation string
	Table     string
}

func NewDatabaseError(operation, table string, cause error) *DatabaseError {
	return &DatabaseError{
		BotError: &BotError{
			Message:    fmt.Sprintf("%s %s failed", operation, table),
			Code:       CodeDatabase,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"table":     table,
			},
			Cause: cause,
		},
		Operation: operation,
		Table:     table,
	}
}

type ServiceError struct {
	*BotError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// CodeOf returns the code of the outermost BotError in err's chain, or "".
func CodeOf(err error) string {
	var be *BotError
	if stderrors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsTransient reports whether err is worth retrying: timeouts, cancellations and
// infrastructure failures of the cache, database or transport.
func IsTransient(err error) bool {
	if err == nil || IsCorruption(err) {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return true
	}
	for _, code := range []string{CodeTransient, CodeCache, CodeDatabase, CodeAPIError} {
		if IsCode(err, code) {
			return true
		}
	}
	return false
}

// IsCode reports whether any BotError in err's chain carries code.
func IsCode(err error, code string) bool {
	if err == nil || code == "" {
		return false
	}
	return stderrors.Is(err, &BotError{Code: code})
}

// IsCorruption reports whether err carries STORAGE_CORRUPTION anywhere in its chain.
func IsCorruption(err error) bool {
	return stderrors.Is(err, ErrStorageCorruption)
}
