package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// TMDBConfig holds the metadata source credentials and locale.
type TMDBConfig struct {
	APIKey   string `json:"apiKey"`
	Language string `json:"language"`
	Region   string `json:"region"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowedOrigins"`
	SecureCookies  bool     `json:"secureCookies"`
}

// StorageConfig holds filesystem and database locations.
type StorageConfig struct {
	DataDir       string `json:"dataDir"`
	CacheTTLHours int    `json:"cacheTtlHours"`
}

// SMTPConfig holds the optional contact-form relay.
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// LogConfig holds log rotation settings.
type LogConfig struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

// Config is the full application configuration.
type Config struct {
	TMDB    TMDBConfig    `json:"tmdb"`
	Server  ServerConfig  `json:"server"`
	Storage StorageConfig `json:"storage"`
	SMTP    SMTPConfig    `json:"smtp"`
	Log     LogConfig     `json:"log"`
}

// supportedLanguages are the locales the catalog is curated for. Spanish
// content takes priority, matching the trailer language ranking.
var supportedLanguages = []language.Tag{
	language.MustParse("es-ES"),
	language.MustParse("en-US"),
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// NormalizeLanguage maps an arbitrary BCP 47 tag (or Accept-Language value)
// onto the closest supported locale, defaulting to es-ES.
func NormalizeLanguage(raw string) string {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return "es-ES"
	}
	_, index, _ := languageMatcher.Match(tags...)
	return supportedLanguages[index].String()
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() Config {
	return Config{
		TMDB: TMDBConfig{
			Language: "es-ES",
			Region:   "ES",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Storage: StorageConfig{
			DataDir:       "./data",
			CacheTTLHours: 24,
		},
		Log: LogConfig{
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Manager loads, persists, and serves the configuration.
type Manager struct {
	mu     sync.RWMutex
	path   string
	config Config
}

// NewManager reads the config file at path, creating it with defaults when
// missing, then applies environment overrides.
func NewManager(path string) (*Manager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path not provided")
	}

	m := &Manager{path: path, config: DefaultConfig()}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
		if err := m.saveLocked(); err != nil {
			return nil, err
		}
		log.Printf("[config] created default config at %s", path)
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, &m.config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	m.applyEnvOverrides()
	m.config.TMDB.Language = NormalizeLanguage(m.config.TMDB.Language)

	return m, nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Reload re-reads the config file and environment overrides, replacing the
// in-memory configuration. Returns the configuration now in effect.
func (m *Manager) Reload() (Config, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg
	m.applyEnvOverrides()
	m.config.TMDB.Language = NormalizeLanguage(m.config.TMDB.Language)
	return m.config, nil
}

// Update replaces the configuration and persists it.
func (m *Manager) Update(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg.TMDB.Language = NormalizeLanguage(cfg.TMDB.Language)
	m.config = cfg
	return m.saveLocked()
}

// applyEnvOverrides lets deployments override file values without editing
// the file. SALA2_TMDB_API_KEY is the one most installs set.
func (m *Manager) applyEnvOverrides() {
	if v := os.Getenv("SALA2_TMDB_API_KEY"); v != "" {
		m.config.TMDB.APIKey = v
	}
	if v := os.Getenv("SALA2_TMDB_LANGUAGE"); v != "" {
		m.config.TMDB.Language = v
	}
	if v := os.Getenv("SALA2_TMDB_REGION"); v != "" {
		m.config.TMDB.Region = v
	}
	if v := os.Getenv("SALA2_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			m.config.Server.Port = port
		}
	}
	if v := os.Getenv("SALA2_DATA_DIR"); v != "" {
		m.config.Storage.DataDir = v
	}
	if v := os.Getenv("SALA2_ALLOWED_ORIGINS"); v != "" {
		m.config.Server.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("SALA2_SECURE_COOKIES"); v != "" {
		m.config.Server.SecureCookies = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SALA2_SMTP_HOST"); v != "" {
		m.config.SMTP.Host = v
	}
	if v := os.Getenv("SALA2_SMTP_PASSWORD"); v != "" {
		m.config.SMTP.Password = v
	}
	if v := os.Getenv("SALA2_LOG_FILE"); v != "" {
		m.config.Log.File = v
	}
}

func (m *Manager) saveLocked() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config temp file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
