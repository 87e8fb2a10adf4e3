package notifier

import (
	"context"

	"github.com/RezaEskandarii/cronfire/types"
	"github.com/rs/zerolog"
)

// LogNotifier writes every reminder to the application log.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

func (l *LogNotifier) Notify(ctx context.Context, n types.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.Info().
		Int64("job_id", n.JobID).
		Int64("user_id", n.UserID).
		Time("fired_at", n.FiredAt).
		Msg(n.Message)
	return nil
}

func (l *LogNotifier) Close() error { return nil }
