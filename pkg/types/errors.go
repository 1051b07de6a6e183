package types

import "errors"

// Configuration validation errors.
var (
	ErrRootsEmpty        = errors.New("library roots must not be empty")
	ErrRegistryPathEmpty = errors.New("timeout registry path must not be empty")
	ErrTimeoutInvalid    = errors.New("default timeout must be positive")
	ErrSizeBudgetInvalid = errors.New("notebook size budget must be positive")
)

// File parsing errors.
var (
	ErrNotNotebook       = errors.New("file is not a notebook")
	ErrMalformedNotebook = errors.New("notebook is not valid JSON")
	ErrNotQmod           = errors.New("file is not a qmod source")
	ErrMalformedRegistry = errors.New("timeout registry is not valid YAML")
)

// Dispatch and reporting errors.
var (
	ErrUnknownHook     = errors.New("unknown hook")
	ErrUnknownSeverity = errors.New("unknown severity")
	ErrUnknownRule     = errors.New("unknown rule")
)

// GitHub automation errors.
var (
	ErrNoToken = errors.New("no GitHub token available")
)
