package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/database"
	"github.com/google/uuid"
)

var deliverySchema = []string{
	`CREATE TABLE IF NOT EXISTS mail_deliveries (
		id            UUID PRIMARY KEY,
		staff_id      TEXT NOT NULL DEFAULT '',
		employee_name TEXT NOT NULL,
		recipient     TEXT NOT NULL,
		cc            TEXT[] NOT NULL DEFAULT '{}',
		subject       TEXT NOT NULL,
		mode          TEXT NOT NULL,
		status        TEXT NOT NULL,
		message_id    TEXT NOT NULL DEFAULT '',
		chart_url     TEXT NOT NULL DEFAULT '',
		archive_path  TEXT NOT NULL DEFAULT '',
		error         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mail_deliveries_created_at ON mail_deliveries (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_mail_deliveries_staff_id ON mail_deliveries (staff_id)`,
}

type deliveryRepository struct {
	db *database.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *database.DB) delivery.Repository {
	return &deliveryRepository{db: db}
}

// EnsureDeliverySchema creates the mail_deliveries table when missing.
func EnsureDeliverySchema(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		for _, stmt := range deliverySchema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply delivery schema: %w", err)
			}
		}
		return nil
	})
}

// Create records a delivery attempt
func (r *deliveryRepository) Create(ctx context.Context, d *delivery.Delivery) error {
	q := GetQuerier(ctx, r.db)

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	cc := d.Cc
	if cc == nil {
		cc = []string{}
	}

	query := `
		INSERT INTO mail_deliveries (id, staff_id, employee_name, recipient, cc, subject, mode, status, message_id, chart_url, archive_path, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := q.Exec(ctx, query,
		d.ID,
		d.StaffID,
		d.EmployeeName,
		d.Recipient,
		cc,
		d.Subject,
		string(d.Mode),
		string(d.Status),
		d.MessageID,
		d.ChartURL,
		d.ArchivePath,
		d.Error,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}

	return nil
}

// List returns deliveries newest first
func (r *deliveryRepository) List(ctx context.Context, filter delivery.ListDeliveriesRequest) ([]delivery.Delivery, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(staff_id) = LOWER($%d)", argIndex))
		args = append(args, strings.TrimSpace(filter.StaffID))
		argIndex++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM mail_deliveries WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count deliveries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, staff_id, employee_name, recipient, cc, subject, mode, status, message_id, chart_url, archive_path, error, created_at
		FROM mail_deliveries
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []delivery.Delivery{}
	for rows.Next() {
		var d delivery.Delivery
		var mode, status string

		if err := rows.Scan(
			&d.ID,
			&d.StaffID,
			&d.EmployeeName,
			&d.Recipient,
			&d.Cc,
			&d.Subject,
			&mode,
			&status,
			&d.MessageID,
			&d.ChartURL,
			&d.ArchivePath,
			&d.Error,
			&d.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan delivery: %w", err)
		}

		d.Mode = delivery.Mode(mode)
		d.Status = delivery.Status(status)
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate deliveries: %w", err)
	}

	return deliveries, total, nil
}
