package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
)

// MailJobs sends every leave summary once a month.
type MailJobs struct {
	deliveryService delivery.Service
	day             int
	hour            int
	interval        time.Duration
	now             func() time.Time

	mu       sync.Mutex
	lastSent string // "2006-01" of the last completed batch
}

// NewMailJobs sends on day at hour UTC. A day of 0 disables the job. The
// job is polled several times within the hour so a failed batch is retried.
func NewMailJobs(deliveryService delivery.Service, day, hour int) *MailJobs {
	return &MailJobs{
		deliveryService: deliveryService,
		day:             day,
		hour:            hour,
		interval:        10 * time.Minute,
		now:             time.Now,
	}
}

func (j *MailJobs) RegisterJobs(scheduler *Scheduler) {
	if j.day == 0 {
		slog.Info("Monthly leave summary job disabled")
		return
	}
	scheduler.AddJob("monthly_leave_summaries", j.interval, j.SendMonthlySummaries)
}

func (j *MailJobs) SendMonthlySummaries(ctx context.Context) error {
	now := j.now().UTC()
	if now.Day() != j.day || now.Hour() != j.hour {
		return nil
	}

	month := now.Format("2006-01")
	j.mu.Lock()
	if j.lastSent == month {
		j.mu.Unlock()
		return nil
	}
	j.mu.Unlock()

	slog.Info("Cron: Starting monthly leave summaries", "month", month)

	result, err := j.deliveryService.SendAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to send leave summaries: %w", err)
	}

	j.mu.Lock()
	j.lastSent = month
	j.mu.Unlock()

	slog.Info("Cron: Monthly leave summaries completed",
		"month", month,
		"sent", result.Sent,
		"failed", result.Failed,
		"unresolved", result.Unresolved,
	)
	return nil
}
