package config

import "errors"

// Validation errors
var (
	ErrInvalidShape     = errors.New("invalid shape")
	ErrInvalidSize      = errors.New("invalid shape size")
	ErrInvalidFill      = errors.New("invalid fill probability")
	ErrInvalidBudget    = errors.New("invalid activation budget")
	ErrInvalidSeeds     = errors.New("invalid seed count")
	ErrInvalidWorkers   = errors.New("invalid worker count")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Loading errors
var (
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrUnsupportedFormat  = errors.New("unsupported configuration format")
	ErrEnvironmentVar     = errors.New("invalid environment variable")
)
