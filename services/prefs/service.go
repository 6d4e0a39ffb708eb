package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sala2/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrClientIDRequired   = errors.New("client id is required")
)

type storedPrefs struct {
	ClientID  string             `json:"clientId"`
	Prefs     models.CookiePrefs `json:"prefs"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Service persists cookie-consent preferences per client. A client with no
// stored entry has never answered the consent banner, which is different from
// a client that declined everything.
type Service struct {
	mu    sync.RWMutex
	path  string
	prefs map[string]storedPrefs
}

// NewService creates a prefs service storing data inside the provided
// directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}

	svc := &Service{
		path:  filepath.Join(storageDir, "cookie_prefs.json"),
		prefs: make(map[string]storedPrefs),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Get returns the stored preferences for a client. The second return value
// reports whether the client has answered the banner at all.
func (s *Service) Get(clientID string) (models.CookiePrefs, bool) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return models.DefaultCookiePrefs(), false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.prefs[clientID]
	if !ok {
		return models.DefaultCookiePrefs(), false
	}
	return stored.Prefs, true
}

// Set stores the preferences for a client.
func (s *Service) Set(clientID string, p models.CookiePrefs) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ErrClientIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[clientID] = storedPrefs{
		ClientID:  clientID,
		Prefs:     p,
		UpdatedAt: time.Now().UTC(),
	}

	return s.saveLocked()
}

// Delete forgets the stored preferences for a client, returning it to the
// never-answered state.
func (s *Service) Delete(clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ErrClientIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prefs[clientID]; !ok {
		return nil
	}
	delete(s.prefs, clientID)
	return s.saveLocked()
}

func (s *Service) load() error {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open prefs file: %w", err)
	}
	defer file.Close()

	var stored []storedPrefs
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode prefs: %w", err)
	}

	s.prefs = make(map[string]storedPrefs, len(stored))
	for _, p := range stored {
		if strings.TrimSpace(p.ClientID) == "" {
			continue
		}
		s.prefs[p.ClientID] = p
	}

	return nil
}

func (s *Service) saveLocked() error {
	stored := make([]storedPrefs, 0, len(s.prefs))
	for _, p := range s.prefs {
		stored = append(stored, p)
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create prefs temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode prefs: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close prefs temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace prefs file: %w", err)
	}

	return nil
}
