package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// ErrValidation covers malformed or missing user input.
	ErrValidation  = fmt.Errorf("validation failed")
	ErrInvalidName = fmt.Errorf("%w: participant name must not be blank", ErrValidation)

	ErrNameTaken          = fmt.Errorf("participant name already taken")
	ErrUnknownParticipant = fmt.Errorf("participant is not registered")
	ErrUnknownAuthor      = fmt.Errorf("author is not a live participant")
	ErrNotFound           = fmt.Errorf("message not found")
	ErrForbidden          = fmt.Errorf("only the author can change this message")

	// ErrStoreFailure wraps any persistence error. Its detail is logged, never returned to callers.
	ErrStoreFailure = fmt.Errorf("store failure")

	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrRecordExists   = fmt.Errorf("record already exists")
)
