package mail

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	stdmail "net/mail"
	"net/smtp"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"sala2/models"
)

var (
	ErrNameRequired    = errors.New("nombre is required")
	ErrEmailRequired   = errors.New("email is required")
	ErrEmailInvalid    = errors.New("email is not valid")
	ErrSubjectRequired = errors.New("asunto is required")
	ErrTextRequired    = errors.New("text is required")
)

// SMTPConfig holds the optional relay settings. When Host is empty, messages
// stay in the outbox only.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Service accepts contact-form submissions, persists them to a JSON outbox,
// and relays them over SMTP when a relay is configured.
type Service struct {
	mu     sync.Mutex
	fs     afero.Fs
	path   string
	smtp   SMTPConfig
	sender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a mail service writing its outbox under outboxDir on the
// given filesystem. A nil fs falls back to the OS filesystem.
func NewService(fs afero.Fs, outboxDir string, smtpCfg SMTPConfig) (*Service, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if strings.TrimSpace(outboxDir) == "" {
		return nil, errors.New("outbox directory not provided")
	}

	if err := fs.MkdirAll(outboxDir, 0o755); err != nil {
		return nil, fmt.Errorf("create outbox dir: %w", err)
	}

	return &Service{
		fs:     fs,
		path:   filepath.Join(outboxDir, "outbox.json"),
		smtp:   smtpCfg,
		sender: smtp.SendMail,
	}, nil
}

// Create validates a submission, stores it in the outbox, and relays it when
// SMTP is configured. The stored message is returned with its assigned ID.
func (s *Service) Create(msg models.MailMessage) (models.MailMessage, error) {
	if err := validate(msg); err != nil {
		return models.MailMessage{}, err
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	messages, err := s.loadLocked()
	if err != nil {
		s.mu.Unlock()
		return models.MailMessage{}, err
	}
	messages = append(messages, msg)
	err = s.saveLocked(messages)
	s.mu.Unlock()
	if err != nil {
		return models.MailMessage{}, err
	}

	if s.smtp.Host != "" {
		if err := s.relay(msg); err != nil {
			// The submission is already safe in the outbox.
			log.Printf("[mail] warning: smtp relay failed for %s: %v", msg.ID, err)
		}
	}

	return msg, nil
}

// List returns all stored submissions, newest first.
func (s *Service) List() ([]models.MailMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}

// SendPasswordReset relays a generated password to the account owner. Without
// an SMTP relay configured there is no way to deliver it, so the caller gets
// an error instead of a silent drop.
func (s *Service) SendPasswordReset(email, generated string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if s.smtp.Host == "" {
		return errors.New("smtp relay not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.smtp.Host, s.smtp.Port)

	var auth smtp.Auth
	if s.smtp.Username != "" {
		auth = smtp.PlainAuth("", s.smtp.Username, s.smtp.Password, s.smtp.Host)
	}

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Recuperación de contraseña\r\n\r\nTu nueva contraseña temporal es: %s\r\n",
		s.smtp.From, email, generated,
	)

	return s.sender(addr, auth, s.smtp.From, []string{email}, []byte(body))
}

func validate(msg models.MailMessage) error {
	if strings.TrimSpace(msg.Nombre) == "" {
		return ErrNameRequired
	}
	email := strings.TrimSpace(msg.Email)
	if email == "" {
		return ErrEmailRequired
	}
	if _, err := stdmail.ParseAddress(email); err != nil {
		return ErrEmailInvalid
	}
	if strings.TrimSpace(msg.Asunto) == "" {
		return ErrSubjectRequired
	}
	if strings.TrimSpace(msg.Text) == "" {
		return ErrTextRequired
	}
	return nil
}

func (s *Service) relay(msg models.MailMessage) error {
	addr := fmt.Sprintf("%s:%d", s.smtp.Host, s.smtp.Port)

	var auth smtp.Auth
	if s.smtp.Username != "" {
		auth = smtp.PlainAuth("", s.smtp.Username, s.smtp.Password, s.smtp.Host)
	}

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nReply-To: %s\r\n\r\n%s %s <%s>\r\n\r\n%s\r\n",
		s.smtp.From, s.smtp.To, msg.Asunto, msg.Email,
		msg.Nombre, msg.Apellido, msg.Email, msg.Text,
	)

	return s.sender(addr, auth, s.smtp.From, []string{s.smtp.To}, []byte(body))
}

func (s *Service) loadLocked() ([]models.MailMessage, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, afero.ErrFileNotFound) {
			return []models.MailMessage{}, nil
		}
		return nil, fmt.Errorf("read outbox: %w", err)
	}

	var messages []models.MailMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode outbox: %w", err)
	}
	return messages, nil
}

func (s *Service) saveLocked(messages []models.MailMessage) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outbox: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write outbox temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace outbox file: %w", err)
	}
	return nil
}
