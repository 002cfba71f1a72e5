package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Contact store errors
	ErrRemoteUnavailable = fmt.Errorf("remote contact store unavailable")
	ErrNotFound          = fmt.Errorf("contact not found")
	ErrOrderNotPersisted = fmt.Errorf("contact order not persisted")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
