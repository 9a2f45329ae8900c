// Package config resolves watchdog settings from the ambient environment
// and a mounted dotenv-style settings file, with documented precedence
// and built-in defaults.
package config

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Settings file / environment keys. Several settings accept two spellings
// because the external configuration surface writes the camel-cased form
// while container environments commonly use the upper-cased one.
const (
	keyServerName        = "serverName"
	keyServerNameUpper   = "SERVER_NAME"
	keyNotInstalled      = "gluster_not_installed_handling"
	keyNotInstalledUpper = "GLUSTER_NOT_INSTALLED_HANDLING"
	keyThresholdsJSON    = "WATCHDOG_THRESHOLDS_JSON"
	keyFrequenciesJSON   = "WATCHDOG_MESSAGE_FREQUENCY_JSON"
	keyInfoRecipients    = "infoChatIDs"
	keyInfoRecipUpper    = "INFO_CHAT_IDS"
	keyWarnRecipients    = "warningChatIDs"
	keyWarnRecipUpper    = "WARNING_CHAT_IDS"
	keyErrorRecipients   = "errorChatIDs"
	keyErrorRecipUpper   = "ERROR_CHAT_IDS"
	keyAdminToken        = "WATCHDOG_ADMIN_TOKEN"
	keyAdminTokenLower   = "watchdog_admin_token"
)

// StoreConfig holds configuration for creating a Store.
type StoreConfig struct {
	// Path is the location of the mounted settings file.
	Path string

	// Logger for resolution diagnostics.
	Logger zerolog.Logger

	// Getenv is the ambient environment lookup. Defaults to os.Getenv.
	Getenv func(string) string
}

// Store reads the mounted settings file and the ambient environment and
// resolves them into Config values. It is the only component with write
// access to the settings file, limited to the structured settings the
// external administration surface also edits.
type Store struct {
	path   string
	logger zerolog.Logger
	getenv func(string) string

	mu      sync.Mutex
	current *Config
}

// NewStore creates a settings store for the given file path.
func NewStore(cfg StoreConfig) *Store {
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Store{
		path:   cfg.Path,
		logger: cfg.Logger,
		getenv: getenv,
	}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load resolves a fresh Config from the settings file and environment.
// It never fails: unreadable files and malformed structured settings
// degrade to built-in defaults with a logged warning.
func (s *Store) Load() *Config {
	file := s.readFile()

	cfg := &Config{
		ServerName: s.value(file, DefaultServerName,
			keyServerName, keyServerNameUpper),
		NotInstalledPolicy: s.value(file, DefaultNotInstalledPolicy,
			keyNotInstalled, keyNotInstalledUpper),
		Thresholds:  s.loadThresholds(file),
		Frequencies: s.loadFrequencies(file),
		InfoRecipients: splitRecipients(
			s.value(file, "", keyInfoRecipients, keyInfoRecipUpper)),
		WarningRecipients: splitRecipients(
			s.value(file, "", keyWarnRecipients, keyWarnRecipUpper)),
		ErrorRecipients: splitRecipients(
			s.value(file, "", keyErrorRecipients, keyErrorRecipUpper)),
		AdminToken: s.value(file, "", keyAdminToken, keyAdminTokenLower),
	}
	return cfg
}

// Current returns the cached Config, loading it on first use. Callers
// that need to observe settings edits must use Reload.
func (s *Store) Current() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		s.current = s.Load()
	}
	return s.current
}

// Reload resolves a fresh Config and replaces the cached value.
func (s *Store) Reload() *Config {
	cfg := s.Load()
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg
}

// readFile parses the settings file into a key/value map. A missing or
// unreadable file is not an error for the resolver.
func (s *Store) readFile() map[string]string {
	if s.path == "" {
		return nil
	}
	values, err := godotenv.Read(s.path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).
			Msg("settings file not readable, resolving from environment only")
		return nil
	}
	return values
}

// value resolves one setting, trying each key spelling in order.
// Per-key precedence: the admin token prefers the environment over the
// file so a corrupted settings file cannot lock the operator out; every
// other key prefers the file so edits made through the administration
// surface take effect without a restart.
func (s *Store) value(file map[string]string, def string, keys ...string) string {
	for _, key := range keys {
		envVal := trimQuoted(s.getenv(key))
		fileVal := trimQuoted(file[key])

		if key == keyAdminToken && envVal != "" {
			return envVal
		}
		if fileVal != "" {
			return fileVal
		}
		if envVal != "" {
			return envVal
		}
	}
	return def
}

func (s *Store) loadThresholds(file map[string]string) map[string]Threshold {
	raw := s.value(file, "", keyThresholdsJSON)
	if raw == "" {
		return DefaultThresholds()
	}

	var thresholds map[string]Threshold
	if err := json.Unmarshal([]byte(raw), &thresholds); err != nil {
		s.logger.Warn().Err(err).
			Str("key", keyThresholdsJSON).
			Msg("invalid thresholds JSON, using default thresholds")
		return DefaultThresholds()
	}
	return thresholds
}

func (s *Store) loadFrequencies(file map[string]string) map[string]string {
	raw := s.value(file, "", keyFrequenciesJSON)
	if raw == "" {
		return DefaultFrequencies()
	}

	var frequencies map[string]string
	if err := json.Unmarshal([]byte(raw), &frequencies); err != nil {
		s.logger.Warn().Err(err).
			Str("key", keyFrequenciesJSON).
			Msg("invalid message frequency JSON, using default frequencies")
		return DefaultFrequencies()
	}
	return frequencies
}

// splitRecipients parses a comma-separated recipient list, dropping empty
// entries. No recipient syntax validation happens here.
func splitRecipients(raw string) []string {
	if raw == "" {
		return nil
	}
	var recipients []string
	for _, part := range strings.Split(raw, ",") {
		if id := trimQuoted(part); id != "" {
			recipients = append(recipients, id)
		}
	}
	return recipients
}

// trimQuoted removes surrounding whitespace and one layer of enclosing
// quote characters.
func trimQuoted(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if first == last && (first == '"' || first == '\'') {
			trimmed = trimmed[1 : len(trimmed)-1]
		}
	}
	return trimmed
}
