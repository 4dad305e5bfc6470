package config

import "errors"

var (
	// ErrInvalidConfig is matched by every validation failure.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrReadFile indicates the TOML or .env file could not be read.
	ErrReadFile = errors.New("config: cannot read file")

	// ErrParse indicates a source could not be decoded.
	ErrParse = errors.New("config: cannot parse")
)
