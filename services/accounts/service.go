package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"sala2/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrFullNameRequired   = errors.New("full name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email is not valid")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailExists        = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// MinPasswordLength is the minimum accepted password length on registration.
const MinPasswordLength = 8

// Service manages persistence of user accounts. Accounts are keyed by ID and
// unique by email, case-insensitive.
type Service struct {
	mu       sync.RWMutex
	path     string
	accounts map[string]models.Account
}

// NewService creates an accounts service storing data inside the provided
// directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "accounts.json"),
		accounts: make(map[string]models.Account),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Register creates a new account for the given email address.
func (s *Service) Register(fullName, email, pass string) (models.Account, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return models.Account{}, ErrFullNameRequired
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return models.Account{}, ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Account{}, ErrEmailInvalid
	}

	pass = strings.TrimSpace(pass)
	if pass == "" {
		return models.Account{}, ErrPasswordRequired
	}
	if len(pass) < MinPasswordLength {
		return models.Account{}, ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lowerEmail := strings.ToLower(email)
	for _, a := range s.accounts {
		if strings.ToLower(a.Email) == lowerEmail {
			return models.Account{}, ErrEmailExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := models.Account{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.accounts[account.ID] = account

	if err := s.saveLocked(); err != nil {
		delete(s.accounts, account.ID)
		return models.Account{}, err
	}

	return account, nil
}

// Authenticate verifies the email and password, returning the account if
// valid.
func (s *Service) Authenticate(email, pass string) (models.Account, error) {
	email = strings.TrimSpace(email)
	pass = strings.TrimSpace(pass)

	if email == "" || pass == "" {
		return models.Account{}, ErrInvalidCredentials
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lowerEmail := strings.ToLower(email)
	var account models.Account
	found := false
	for _, a := range s.accounts {
		if strings.ToLower(a.Email) == lowerEmail {
			account = a
			found = true
			break
		}
	}

	if !found {
		// Burn a bcrypt comparison anyway to keep timing uniform
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$dummy"), []byte(pass))
		return models.Account{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(pass)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// Get returns the account with the given ID if present.
func (s *Service) Get(id string) (models.Account, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	return account, ok
}

// GetByEmail returns the account with the given email if present.
func (s *Service) GetByEmail(email string) (models.Account, bool) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if strings.ToLower(a.Email) == email {
			return a, true
		}
	}
	return models.Account{}, false
}

// Exists reports whether an account with the provided ID is registered.
func (s *Service) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// List returns all accounts sorted by creation time.
func (s *Service) List() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts
}

// UpdatePassword changes the password for an account.
func (s *Service) UpdatePassword(id, newPassword string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = string(hash)
	account.UpdatedAt = time.Now().UTC()
	s.accounts[id] = account

	return s.saveLocked()
}

// ResetPassword replaces the account's password with a generated one and
// returns it so it can be mailed to the user.
func (s *Service) ResetPassword(id string) (string, error) {
	generated, err := password.Generate(16, 4, 0, false, false)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}

	if err := s.UpdatePassword(id, generated); err != nil {
		return "", err
	}
	return generated, nil
}

// Delete removes an account by ID.
func (s *Service) Delete(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return ErrAccountNotFound
	}

	delete(s.accounts, id)

	return s.saveLocked()
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open accounts file: %w", err)
	}
	defer file.Close()

	var stored []models.AccountStorage
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode accounts: %w", err)
	}

	s.accounts = make(map[string]models.Account, len(stored))
	for _, as := range stored {
		if strings.TrimSpace(as.ID) == "" {
			continue
		}
		account := as.ToAccount()
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		if account.UpdatedAt.IsZero() {
			account.UpdatedAt = account.CreatedAt
		}
		s.accounts[account.ID] = account
	}

	return nil
}

func (s *Service) saveLocked() error {
	storage := make([]models.AccountStorage, 0, len(s.accounts))
	for _, account := range s.accounts {
		storage = append(storage, account.ToStorage())
	}

	sort.Slice(storage, func(i, j int) bool {
		return storage[i].CreatedAt.Before(storage[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create accounts temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(storage); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode accounts: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync accounts: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close accounts temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	return nil
}
