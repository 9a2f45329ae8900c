package dispatch

import (
	"context"

	"github.com/rs/zerolog"
)

// Deliverer hands a composed report body to a transport for a set of
// recipients. Implementations own retries and transport errors; the
// caller only decides whether and when to invoke Send.
type Deliverer interface {
	Send(ctx context.Context, recipients []string, message string) error
}

// LogDeliverer writes reports to the log instead of a transport. It backs
// deployments that run the watchdog without a messaging integration.
type LogDeliverer struct {
	Logger zerolog.Logger
}

func (d LogDeliverer) Send(_ context.Context, recipients []string, message string) error {
	d.Logger.Info().
		Strs("recipients", recipients).
		Int("message_bytes", len(message)).
		Msg("report delivered to log transport")
	d.Logger.Debug().Str("message", message).Msg("report body")
	return nil
}
