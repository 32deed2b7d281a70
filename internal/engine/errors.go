package engine

import "fmt"

// Error codes, one per engine.Error taxonomy entry. The HTTP layer maps
// these onto the wire-level AWS error codes/types; the engine itself only
// ever deals in these.
const (
	CodeQueueDoesNotExist    = "QueueDoesNotExist"
	CodeQueueAlreadyExists   = "QueueAlreadyExists"
	CodeQueueDeletedRecently = "QueueDeletedRecently"
	CodeInvalidParameter     = "InvalidParameterValue"
	CodeReceiptHandleInvalid = "ReceiptHandleIsInvalid"
	CodePurgeInProgress      = "PurgeQueueInProgress"
	CodeOverLimit            = "OverLimit"
	CodeInternal             = "InternalError"
)

// Error is the engine's single error type. Every operation that fails
// returns one of these rather than a bare error or a panic; the HTTP layer
// unwraps it with errors.As and renders Code/Message onto the wire.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrQueueDoesNotExist reports that no queue with the given name/URL/ARN
// exists in the broker's directory.
func ErrQueueDoesNotExist(nameOrURL string) *Error {
	return newError(CodeQueueDoesNotExist, "the specified queue does not exist: %s", nameOrURL)
}

// ErrQueueAlreadyExists reports a CreateQueue call naming an existing queue
// with attributes that differ from the request.
func ErrQueueAlreadyExists(name string) *Error {
	return newError(CodeQueueAlreadyExists, "a queue named %s already exists with different attributes", name)
}

// ErrQueueDeletedRecently reports a CreateQueue call reusing a name within
// the 60-second post-deletion grace period.
func ErrQueueDeletedRecently(name string) *Error {
	return newError(CodeQueueDeletedRecently,
		"queue %s was deleted less than 60 seconds ago; retry after the grace period", name)
}

// ErrInvalidParameter wraps a validation failure with a human-readable
// reason (bad attribute value, MessageGroupId missing, body too large, …).
func ErrInvalidParameter(format string, args ...any) *Error {
	return newError(CodeInvalidParameter, format, args...)
}

// ErrReceiptHandleInvalid reports a delete/change-visibility call against a
// handle the queue has never issued, or one for a message already gone.
func ErrReceiptHandleInvalid(handle string) *Error {
	return newError(CodeReceiptHandleInvalid, "receipt handle %s is invalid or expired", handle)
}

// ErrPurgeInProgress reports a PurgeQueue call within 60 seconds of the
// previous purge of the same queue.
func ErrPurgeInProgress(name string) *Error {
	return newError(CodePurgeInProgress, "a purge is already in progress for queue %s", name)
}

// ErrOverLimit reports a resource bound being hit (the per-queue in-flight
// message cap).
func ErrOverLimit(format string, args ...any) *Error {
	return newError(CodeOverLimit, format, args...)
}

// ErrInternal wraps an invariant violation the caller cannot have caused
// directly. It never crosses the engine boundary as a panic.
func ErrInternal(format string, args ...any) *Error {
	return newError(CodeInternal, format, args...)
}
