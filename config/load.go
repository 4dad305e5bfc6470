package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultDotEnv is the .env file read by Load.
const DefaultDotEnv = ".env"

// Sources names the inputs of LoadSources.
type Sources struct {
	// File is a TOML file. Empty or missing files are skipped.
	File string

	// DotEnv is a .env file. Empty or missing files are skipped.
	DotEnv string

	// Environ is the process environment as KEY=value pairs.
	// Default: os.Environ()
	Environ []string
}

// Load reads path, ./.env and the process environment over Default().
func Load(path string) (Config, error) {
	return LoadSources(Sources{File: path, DotEnv: DefaultDotEnv})
}

// LoadSources applies src over Default() and validates the result.
func LoadSources(src Sources) (Config, error) {
	cfg := Default()

	environ := src.Environ
	if environ == nil {
		environ = os.Environ()
	}
	vars, err := dotEnv(src.DotEnv)
	if err != nil {
		return Config{}, err
	}
	// The process environment wins over the .env file.
	maps.Copy(vars, env.ToMap(environ))

	if err := decodeFile(src.File, vars, &cfg); err != nil {
		return Config{}, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("%w environment: %w", ErrParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeFile expands ${VAR} references in a TOML file from vars and decodes
// it into cfg. Unknown keys are rejected.
func decodeFile(path string, vars map[string]string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrReadFile, path, err)
	}

	expanded, err := expandStrict(string(data), vars)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	dec := toml.NewDecoder(strings.NewReader(expanded))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w %s: %s", ErrParse, path, strict.String())
		}
		return fmt.Errorf("%w %s: %w", ErrParse, path, err)
	}
	return nil
}

func dotEnv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrReadFile, path, err)
	}
	return vars, nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
