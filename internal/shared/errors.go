package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Engine error kinds. Callers branch on these with errors.Is instead of
	// catching broad failures.
	ErrNetwork = fmt.Errorf("network request failed")
	ErrAPI     = fmt.Errorf("API reported failure")
	ErrParse   = fmt.Errorf("parse failed")
	ErrCache   = fmt.Errorf("cache operation failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
