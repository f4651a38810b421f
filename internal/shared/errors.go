package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Job errors
	ErrJobNotFound   = fmt.Errorf("transfer job not found")
	ErrInvalidJob    = fmt.Errorf("invalid transfer job")
	ErrJobNotStarted = fmt.Errorf("transfer job not started")

	// Provider and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrProviderNotFound   = fmt.Errorf("no provider registered")
	ErrExportFailed       = fmt.Errorf("export failed")
	ErrImportFailed       = fmt.Errorf("import failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	ErrTimeout = fmt.Errorf("operation timed out")
)
