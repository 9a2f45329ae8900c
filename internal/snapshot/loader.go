package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotReadable is returned when the snapshot document cannot be read or
// decoded. The usual causes are a missing volume mapping or a collector
// that has not produced a report yet.
var ErrNotReadable = errors.New("server info snapshot not readable")

// Load reads and decodes one snapshot document from disk.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v (is the serverInfo directory mapped and has the report been created on the server?)",
			ErrNotReadable, path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrNotReadable, path, err)
	}
	return &snap, nil
}

// equalsTrue reports whether a producer-supplied flag string is "TRUE" in
// any casing.
func equalsTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// IsCollectorInstalled reports whether the network statistics collector is
// installed on the host.
func (n *Network) IsCollectorInstalled() bool {
	return equalsTrue(n.CollectorInstalled)
}

// EnoughData reports whether the collector has gathered enough history
// for its averages to be meaningful.
func (n *Network) EnoughData() bool {
	return equalsTrue(n.HasEnoughData)
}
