package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// StateStore persists the last-sent timestamp of each channel.
//
// LastSent never fails: an absent or unreadable record reads as the zero
// time, which makes the channel immediately eligible. RecordSent failures
// must be surfaced, since a silently unrecorded send would repeat on every
// following cycle.
type StateStore interface {
	LastSent(ch Channel) time.Time
	RecordSent(ch Channel, sentAt time.Time) error
}

// FileStore keeps one timestamp file per channel under a state directory.
// Each file holds a single integer Unix time and is overwritten whole on
// every record.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// lazily on the first write.
func NewFileStore(dir string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		dir:    dir,
		logger: logger.With().Str("component", "dispatch_state").Logger(),
	}
}

func (s *FileStore) path(ch Channel) (string, error) {
	name, ok := stateFileNames[ch]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
	}
	return filepath.Join(s.dir, name), nil
}

// LastSent reads the channel's persisted timestamp. Any failure, including
// a missing file or unparseable contents, reads as the zero time.
func (s *FileStore) LastSent(ch Channel) time.Time {
	path, err := s.path(ch)
	if err != nil {
		s.logger.Warn().Err(err).Msg("last-sent read skipped")
		return time.Time{}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("last-sent state unreadable, treating as never sent")
		}
		return time.Time{}
	}

	unix, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("last-sent state malformed, treating as never sent")
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// RecordSent overwrites the channel's timestamp file with sentAt.
func (s *FileStore) RecordSent(ch Channel, sentAt time.Time) error {
	path, err := s.path(ch)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dispatch state directory: %w", err)
	}

	payload := strconv.FormatInt(sentAt.Unix(), 10)
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		return fmt.Errorf("failed to record last-sent time for %s channel: %w", ch, err)
	}
	return nil
}

// MemoryStore is an in-process StateStore used in tests and dry runs.
type MemoryStore struct {
	mu   sync.Mutex
	sent map[Channel]time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sent: make(map[Channel]time.Time)}
}

func (s *MemoryStore) LastSent(ch Channel) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[ch]
}

func (s *MemoryStore) RecordSent(ch Channel, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[ch] = sentAt
	return nil
}
