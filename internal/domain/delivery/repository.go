package delivery

import "context"

// Repository persists delivery attempts.
type Repository interface {
	Create(ctx context.Context, d *Delivery) error
	List(ctx context.Context, filter ListDeliveriesRequest) ([]Delivery, int64, error)
}
