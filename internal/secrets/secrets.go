// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files, with
// environment variables as a fallback. Each file in the directory represents
// one secret: the filename is the key name and the file contents (trimmed)
// are the value.
//
// Required key files: tavily-api-key, openai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key names, as file names under the secrets directory.
const (
	TavilyKey = "tavily-api-key"
	OpenAIKey = "openai-api-key"
)

// envFallback maps key names to the environment variables consulted when no
// file provides the key.
var envFallback = map[string]string{
	TavilyKey: "TAVILY_API_KEY",
	OpenAIKey: "OPENAI_API_KEY",
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	if name, ok := envFallback[key]; ok {
		return name
	}
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Lookup returns the value for key from loaded, falling back to the key's
// environment variable.
func Lookup(loaded map[string]string, key string) (string, bool) {
	if v, ok := loaded[key]; ok && v != "" {
		return v, true
	}
	v := strings.TrimSpace(os.Getenv(EnvName(key)))
	return v, v != ""
}

// Require resolves every key and fails if any is missing. The error names
// each missing key together with where it may be supplied.
func Require(loaded map[string]string, dir string, keys ...string) (map[string]string, error) {
	resolved := make(map[string]string, len(keys))
	var missing []string
	for _, key := range keys {
		v, ok := Lookup(loaded, key)
		if !ok {
			missing = append(missing, fmt.Sprintf("%s (file %s or env %s)", key, filepath.Join(dir, key), EnvName(key)))
			continue
		}
		resolved[key] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required secrets: %s", strings.Join(missing, ", "))
	}
	return resolved, nil
}
