// Package dispatch decides whether a composed report may be sent on each
// notification channel, based on per-channel minimum intervals and
// persisted last-sent timestamps.
package dispatch

import "errors"

var (
	// ErrUnknownChannel is returned when a caller names a channel outside
	// the fixed info/warning/error set.
	ErrUnknownChannel = errors.New("unknown dispatch channel")
)

// Channel is one of the three notification levels. Each channel carries
// its own minimum resend interval and last-sent timestamp.
type Channel string

const (
	ChannelInfo    Channel = "info"
	ChannelWarning Channel = "warning"
	ChannelError   Channel = "error"
)

// Channels lists every dispatch channel in ascending severity order.
func Channels() []Channel {
	return []Channel{ChannelInfo, ChannelWarning, ChannelError}
}

// stateFileNames maps each channel to its persisted timestamp file.
var stateFileNames = map[Channel]string{
	ChannelInfo:    "lastSentInfoReport.txt",
	ChannelWarning: "lastSentWarningReport.txt",
	ChannelError:   "lastSentErrorReport.txt",
}
