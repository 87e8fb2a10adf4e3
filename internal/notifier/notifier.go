package notifier

import (
	"context"

	"github.com/RezaEskandarii/cronfire/types"
)

// Notifier delivers the message of a fired job.
type Notifier interface {
	Notify(ctx context.Context, n types.Notification) error
	Close() error
}
