package storage

import (
	"context"

	"transferScope/internal/model"
)

// Storage defines a sink for classified transfer events.
type Storage interface {
	PutTransferBatch(ctx context.Context, events []model.EmittedEvent) error
}
