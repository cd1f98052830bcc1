package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskvault/backend/internal/infrastructure/audit"
	"github.com/taskvault/backend/usecase"
)

// RecorderConfig controls queueing and retention of audit events.
type RecorderConfig struct {
	QueueSize       int
	Retention       time.Duration
	CleanupInterval time.Duration
}

// AuditRecorder drains authentication events into the journal on a
// background goroutine and sweeps out expired entries on a schedule.
// It implements usecase.AuditTrail.
type AuditRecorder struct {
	journal *audit.Journal
	events  chan audit.Event
	done    chan struct{}
	cron    *cron.Cron
	logger  *zap.Logger
	cfg     RecorderConfig
}

func NewAuditRecorder(journal *audit.Journal, logger *zap.Logger, cfg RecorderConfig) *AuditRecorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ar := &AuditRecorder{
		journal: journal,
		events:  make(chan audit.Event, cfg.QueueSize),
		done:    make(chan struct{}),
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.CleanupInterval.Seconds()))
	_, _ = ar.cron.AddFunc(schedule, func() {
		if err := ar.journal.Cleanup(time.Now().Add(-ar.cfg.Retention)); err != nil {
			ar.logger.Error("audit retention sweep failed", zap.Error(err))
		}
	})

	return ar
}

// Start launches the consumer goroutine and the cleanup scheduler.
func (ar *AuditRecorder) Start() {
	go ar.consume()
	ar.cron.Start()
	ar.logger.Info("audit recorder started")
}

// Stop closes the intake, waits for the queue to drain and stops the
// scheduler. Stop must run after the HTTP server has shut down so no request
// can record into a closed channel.
func (ar *AuditRecorder) Stop(ctx context.Context) {
	close(ar.events)
	select {
	case <-ar.done:
	case <-ctx.Done():
	}

	stopCtx := ar.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	ar.logger.Info("audit recorder stopped")
}

// Record queues an authentication event. When the queue is full the event is
// dropped with a warning rather than stalling the request path.
func (ar *AuditRecorder) Record(event usecase.AuthEvent) {
	entry := audit.Event{
		UserID:   event.UserID,
		Username: event.Username,
		Action:   event.Action,
		Success:  event.Success,
		At:       event.Time,
	}
	select {
	case ar.events <- entry:
	default:
		ar.logger.Warn("audit queue full, dropping event",
			zap.String("action", entry.Action),
			zap.String("username", entry.Username))
	}
}

func (ar *AuditRecorder) consume() {
	defer close(ar.done)
	for event := range ar.events {
		if err := ar.journal.Append(event); err != nil {
			ar.logger.Error("failed to append audit event",
				zap.String("action", event.Action),
				zap.Error(err))
		}
	}
}
