// Package secrets stores the API token in the OS keychain, with a file
// fallback for hosts that have no keyring service.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	DefaultService = "powerball-superposition"
	tokenAccount   = "api-token"
)

// ErrNoToken is returned when no token has been stored.
var ErrNoToken = errors.New("secrets: no api token stored")

// TokenStore keeps a single API token.
type TokenStore struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewTokenStore creates a store. An empty fallbackPath disables the file
// fallback.
func NewTokenStore(service, fallbackPath string) *TokenStore {
	if strings.TrimSpace(service) == "" {
		service = DefaultService
	}
	return &TokenStore{service: service, fallbackPath: fallbackPath}
}

func (s *TokenStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("secrets: token is required")
	}
	err := keyring.Set(s.service, tokenAccount, token)
	if err == nil {
		return nil
	}
	if !isKeyringUnavailable(err) {
		return fmt.Errorf("secrets: keyring set: %w", err)
	}
	return s.writeFallback(token)
}

// Get returns the stored token or ErrNoToken.
func (s *TokenStore) Get() (string, error) {
	val, err := keyring.Get(s.service, tokenAccount)
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("secrets: keyring get: %w", err)
	}

	val, ferr := s.readFallback()
	if ferr != nil {
		return "", ferr
	}
	if val == "" {
		return "", ErrNoToken
	}
	return val, nil
}

// Clear removes the token from the keyring and the fallback file.
func (s *TokenStore) Clear() error {
	err := keyring.Delete(s.service, tokenAccount)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
		_ = s.removeFallback()
		return fmt.Errorf("secrets: keyring delete: %w", err)
	}
	return s.removeFallback()
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

type fallbackFile struct {
	Token string `json:"token"`
}

func (s *TokenStore) readFallback() (string, error) {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return "", ErrNoToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("secrets: read fallback: %w", err)
	}
	var f fallbackFile
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f); err != nil {
			return "", fmt.Errorf("secrets: decode fallback: %w", err)
		}
	}
	return f.Token, nil
}

func (s *TokenStore) writeFallback(token string) error {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return errors.New("secrets: keyring unavailable and no fallback path configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("secrets: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(fallbackFile{Token: token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("secrets: write fallback: %w", err)
	}
	return nil
}

func (s *TokenStore) removeFallback() error {
	if strings.TrimSpace(s.fallbackPath) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.fallbackPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("secrets: remove fallback: %w", err)
	}
	return nil
}
