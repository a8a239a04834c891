// Package credentials persists the seller API key between CLI and server runs.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvKey names the environment variable that overrides the stored key.
const EnvKey = "WB_FINANCES_OAUTH_TOKEN"

// Sources reported by Load.
const (
	SourceEnv     = "env"
	SourceState   = "state"
	SourceMissing = "missing"
)

const defaultHomeName = ".wb-finances"

// Credentials holds persisted secret material.
type Credentials struct {
	APIKey string `json:"api_key,omitempty"`
}

// HomeDir returns WB_FINANCES_HOME, or ~/.wb-finances.
func HomeDir() string {
	if v := os.Getenv("WB_FINANCES_HOME"); v != "" {
		return v
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, defaultHomeName)
	}
	return defaultHomeName
}

// Load returns credentials and their source: "env", "state", or "missing".
func Load(home string) (Credentials, string, error) {
	if home == "" {
		home = HomeDir()
	}

	if key := os.Getenv(EnvKey); key != "" {
		return Credentials{APIKey: key}, SourceEnv, nil
	}

	raw, err := os.ReadFile(pathFor(home))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, SourceMissing, nil
		}
		return Credentials{}, "", err
	}

	var c Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return Credentials{}, "", fmt.Errorf("parse %s: %w", pathFor(home), err)
	}
	if c.APIKey != "" {
		return c, SourceState, nil
	}
	return Credentials{}, SourceMissing, nil
}

// Put writes the key atomically with 0600 permissions.
func Put(home, key string) error {
	if key == "" {
		return fmt.Errorf("api key empty")
	}
	if home == "" {
		home = HomeDir()
	}

	dir := filepath.Join(home, "state")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := pathFor(home)
	tmp := path + ".tmp"

	enc, err := json.Marshal(Credentials{APIKey: key})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(enc); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	// best-effort fsync on directory
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Delete removes the stored key.
func Delete(home string) error {
	if home == "" {
		home = HomeDir()
	}
	if err := os.Remove(pathFor(home)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Resolve picks the first non-empty of explicit, the environment and the stored key.
func Resolve(explicit, home string) (string, string, error) {
	if explicit != "" {
		return explicit, "flag", nil
	}
	c, source, err := Load(home)
	if err != nil {
		return "", "", err
	}
	return c.APIKey, source, nil
}

func pathFor(home string) string {
	return filepath.Join(home, "state", "credentials.json")
}
