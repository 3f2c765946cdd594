package config

import "errors"

var (
	errInvalidDuration = errors.New("invalid duration")
	errInvalidJSON     = errors.New("invalid JSON")
	errInvalidYAML     = errors.New("invalid YAML")
	errInvalidTOML     = errors.New("invalid TOML")

	ErrRootNotDirectory   = errors.New("root is not a directory")
	ErrInvalidBasePath    = errors.New("base path must start and end with '/'")
	ErrInvalidAPIPrefix   = errors.New("api prefix must start with '/' and differ from base path")
	ErrIncompleteTLS      = errors.New("tls requires both cert_file and key_file")
	ErrInvalidRateLimit   = errors.New("rate limit burst must be at least 1")
	ErrInvalidAuthHash    = errors.New("auth user hash is not a bcrypt hash")
	ErrInvalidIndexFile   = errors.New("index file must be a plain file name")
	ErrNegativeConnection = errors.New("max_connections must not be negative")
)
