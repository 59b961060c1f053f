package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
	"github.com/google/uuid"
)

// DefaultCapacity bounds the in-memory delivery log.
const DefaultCapacity = 1000

// deliveryRepository keeps the most recent deliveries in process memory. It
// is used when no database is configured; history is lost on restart.
type deliveryRepository struct {
	mu       sync.RWMutex
	items    []delivery.Delivery
	capacity int
}

func NewDeliveryRepository(capacity int) delivery.Repository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &deliveryRepository{capacity: capacity}
}

func (r *deliveryRepository) Create(ctx context.Context, d *delivery.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, *d)
	if len(r.items) > r.capacity {
		r.items = r.items[len(r.items)-r.capacity:]
	}
	return nil
}

func (r *deliveryRepository) List(ctx context.Context, filter delivery.ListDeliveriesRequest) ([]delivery.Delivery, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]delivery.Delivery, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		d := r.items[i]
		if filter.Status != "" && string(d.Status) != filter.Status {
			continue
		}
		if filter.StaffID != "" && !strings.EqualFold(d.StaffID, strings.TrimSpace(filter.StaffID)) {
			continue
		}
		matched = append(matched, d)
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PageSize
	if start < 0 || start >= len(matched) {
		return []delivery.Delivery{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}
