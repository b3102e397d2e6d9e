package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// EnvKey overrides the stored credential when set.
const EnvKey = "GEMINI_API_KEY"

var ErrEmptySecret = errors.New("credential must not be empty")

type state struct {
	APIKey string `json:"api_key"`
}

// Store holds the single Gemini API key used for all remote calls.
// The key is persisted to a local state file so it survives restarts; it is
// never sent anywhere except as the authentication parameter on Gemini calls.
type Store struct {
	path string
	mu   sync.RWMutex
	key  string
}

// DefaultPath returns the per-user credential file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "pagelate", "credentials.json"), nil
}

// New builds a Store backed by the file at path and loads any persisted key.
// A missing file resolves to an empty store.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read credential state: %w", err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode credential state: %w", err)
	}
	s.key = st.APIKey
	return s, nil
}

// Get returns the active API key. The environment variable takes precedence
// over the stored value.
func (s *Store) Get() (string, bool) {
	if env := os.Getenv(EnvKey); env != "" {
		return env, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, s.key != ""
}

// Set stores and persists a new API key. Empty or whitespace-only values are
// rejected.
func (s *Store) Set(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrEmptySecret
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = secret
	return s.persist(state{APIKey: secret})
}

// Clear wipes the credential, both in memory and on disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	return s.persist(state{})
}

func (s *Store) persist(st state) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure credential directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential state: %w", err)
	}
	return nil
}
