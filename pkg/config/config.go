// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: values
// come from one or more optional .env files plus the process environment, and
// are parsed into plain structs via `env:` field tags. Each configuration
// type is parsed at most once per process; repeated Load calls for the same
// type return the cached value.
package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu    sync.Mutex
	cache = make(map[string]any)

	defaultEnv sync.Once
)

// LoadEnv loads environment variables from the given .env files, earlier
// files being overridden by later ones. With no arguments it loads the
// default .env from the working directory.
func LoadEnv(paths ...string) error {
	if err := godotenv.Overload(paths...); err != nil {
		return fmt.Errorf("%w: %w", ErrEnvFileNotLoaded, err)
	}
	return nil
}

// Load parses environment variables into v based on `env:` struct tags.
// The default .env file is loaded lazily on first use; a missing file is not
// an error. Missing variables marked `required` fail the whole Load.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnv.Do(func() {
		_ = godotenv.Load() // optional
	})

	key := reflect.TypeOf(*v).String()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return fmt.Errorf("%w: %w", ErrParsingConfig, err)
	}
	cache[key] = *v
	return nil
}

// MustLoad works like Load but panics on failure. Intended for configuration
// the application cannot start without, e.g. the billing API credential.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// ResetCache clears cached configurations. Only useful in tests.
func ResetCache() {
	mu.Lock()
	defer mu.Unlock()
	cache = make(map[string]any)
}
