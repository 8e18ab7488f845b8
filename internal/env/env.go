// Package env loads KEY=VALUE pairs from a .env file into the process
// environment so config files can reference secrets such as authenticated
// RPC URLs via ${VAR} without hardcoding them.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = ".env"

// Load reads path and sets every variable it defines.
//
// File format:
//   - Each line contains KEY=VALUE, optionally prefixed by "export "
//   - Empty lines and lines starting with # are ignored
//   - Surrounding single or double quotes are stripped from values
//
// A missing file is not an error. Variables in the file override those
// already set in the environment.
func Load(path string) error {
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("%s:%d: expected KEY=VALUE", path, n+1)
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("%s:%d: %w", path, n+1, err)
		}
	}
	return nil
}
