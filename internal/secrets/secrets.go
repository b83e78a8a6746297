// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves credentials from the process environment and a
// directory of plain-text files. Each file holds one secret: the filename is
// the secret name and the trimmed contents are the value.
//
// Recognized files: anthropic-api-key, ncbi-api-key, smtp-user, smtp-pass.
// Any environment key can be supplied as a file by lowercasing it and
// replacing underscores with hyphens (SMTP_HOST becomes smtp-host).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store maps secret names to values.
type Store map[string]string

// Load reads all files in dir. A missing directory is not an error and
// yields an empty Store. Unreadable files produce a warning on stderr but do
// not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// FileName returns the secret file that backs an environment key.
func FileName(envKey string) string {
	return strings.ReplaceAll(strings.ToLower(envKey), "_", "-")
}

// Lookup resolves envKey from the environment first and the secrets
// directory second. Blank values count as unset.
func (s Store) Lookup(envKey string) (string, bool) {
	if v, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	v, ok := s[FileName(envKey)]
	return v, ok
}

// Get is Lookup without the presence flag.
func (s Store) Get(envKey string) string {
	v, _ := s.Lookup(envKey)
	return v
}
