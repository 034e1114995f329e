package verification

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists verification records. Implementations live in
// infrastructure; the application layer depends only on this interface.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*Record, error)
}
