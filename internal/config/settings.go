package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// Settings is the structured subset of the configuration the core can
// serialize back to the settings file: the two JSON-valued maps and the
// three recipient lists.
type Settings struct {
	Thresholds        map[string]Threshold
	Frequencies       map[string]string
	InfoRecipients    []string
	WarningRecipients []string
	ErrorRecipients   []string
}

// SettingsFromConfig extracts the writable settings from a resolved Config.
func SettingsFromConfig(c *Config) Settings {
	return Settings{
		Thresholds:        c.Thresholds,
		Frequencies:       c.Frequencies,
		InfoRecipients:    c.InfoRecipients,
		WarningRecipients: c.WarningRecipients,
		ErrorRecipients:   c.ErrorRecipients,
	}
}

// Encode renders the settings in their key=value wire form. JSON-valued
// settings become single-line JSON documents, recipient lists comma-joined
// strings, so a subsequent Load round-trips to the same values.
func (s Settings) Encode() (map[string]string, error) {
	thresholds, err := json.Marshal(s.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("encoding thresholds: %w", err)
	}
	frequencies, err := json.Marshal(s.Frequencies)
	if err != nil {
		return nil, fmt.Errorf("encoding frequencies: %w", err)
	}

	return map[string]string{
		keyThresholdsJSON:  string(thresholds),
		keyFrequenciesJSON: string(frequencies),
		keyInfoRecipients:  strings.Join(s.InfoRecipients, ","),
		keyWarnRecipients:  strings.Join(s.WarningRecipients, ","),
		keyErrorRecipients: strings.Join(s.ErrorRecipients, ","),
	}, nil
}

// WriteSettings merges the structured settings into the settings file,
// preserving unrelated keys. This is the only write path the core owns;
// free-form configuration edits belong to the administration surface.
func (s *Store) WriteSettings(settings Settings) error {
	encoded, err := settings.Encode()
	if err != nil {
		return err
	}

	merged := s.readFile()
	if merged == nil {
		merged = make(map[string]string, len(encoded))
	}
	for key, value := range encoded {
		merged[key] = value
	}

	if err := godotenv.Write(merged, s.path); err != nil {
		return fmt.Errorf("writing settings file %s: %w", s.path, err)
	}
	return nil
}
