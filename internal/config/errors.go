package config

import "errors"

// Validation errors returned by Options.Validate.
var (
	ErrInvalidThreads            = errors.New("invalid threads: must be positive")
	ErrInvalidTimeout            = errors.New("invalid timeout: must be positive")
	ErrInvalidRetries            = errors.New("invalid retries: at least one attempt is required")
	ErrInvalidRateLimit          = errors.New("invalid rate limit: must be non-negative")
	ErrInvalidMaxBodySize        = errors.New("invalid max body size: must be non-negative")
	ErrInvalidRatio              = errors.New("invalid ratio: must be in (0, 1]")
	ErrInvalidFuzzyLength        = errors.New("invalid max fuzzy length: must be positive")
	ErrInvalidDecisionCache      = errors.New("invalid decision cache size: must be non-negative")
	ErrInvalidDuplicateThreshold = errors.New("invalid duplicate threshold: must be non-negative")
	ErrConflictingStatusFilters  = errors.New("--include-status and --exclude-status are mutually exclusive")
	ErrInvalidFormat             = errors.New("invalid format: must be one of text, json, csv")
	ErrInvalidSort               = errors.New("--sort must be one of: status, path, size")
)

// ErrConfigNotFound is returned when an explicitly requested config file
// does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
