package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryRepository_CreateAndList(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewDeliveryRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	records := []*delivery.Delivery{
		{StaffID: "S001", EmployeeName: "Alice", Recipient: "alice@example.com", Cc: []string{"boss@example.com"}, Subject: "March Leave Summary - Alice", Mode: delivery.ModeProduction, Status: delivery.StatusSent, MessageID: "<1@example.com>", CreatedAt: base},
		{StaffID: "S002", EmployeeName: "Bob", Recipient: "bob@example.com", Subject: "March Leave Summary - Bob", Mode: delivery.ModeProduction, Status: delivery.StatusFailed, Error: "550", CreatedAt: base.Add(time.Minute)},
	}
	for _, d := range records {
		require.NoError(t, repo.Create(ctx, d))
		assert.NotEmpty(t, d.ID)
	}

	all, total, err := repo.List(ctx, delivery.ListDeliveriesRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, all, 2)
	assert.Equal(t, "Bob", all[0].EmployeeName)
	assert.Empty(t, all[0].Cc)
	assert.Equal(t, []string{"boss@example.com"}, all[1].Cc)

	failed, total, err := repo.List(ctx, delivery.ListDeliveriesRequest{Status: string(delivery.StatusFailed), Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, failed, 1)
	assert.Equal(t, "550", failed[0].Error)

	byStaff, _, err := repo.List(ctx, delivery.ListDeliveriesRequest{StaffID: "s001", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, byStaff, 1)
	assert.Equal(t, delivery.StatusSent, byStaff[0].Status)
}

func TestWithTransaction_Rollback(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewDeliveryRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
		require.NoError(t, repo.Create(ctx, &delivery.Delivery{EmployeeName: "Alice", Recipient: "alice@example.com", Subject: "s", Mode: delivery.ModeDevelopment, Status: delivery.StatusSent}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := repo.List(ctx, delivery.ListDeliveriesRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
