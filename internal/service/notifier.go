package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/observability"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

const (
	notificationTypeAttendance = "attendance"
	deliveryTimeout            = 5 * time.Second
)

// AttendanceNotice is queued for a guardian once an attendance mark commits.
type AttendanceNotice struct {
	SchoolID      uint   `json:"school_id"`
	StudentID     uint   `json:"student_id"`
	StudentName   string `json:"student_name"`
	GuardianName  string `json:"guardian_name,omitempty"`
	GuardianEmail string `json:"guardian_email,omitempty"`
	GuardianPhone string `json:"guardian_phone,omitempty"`
	Date          string `json:"date"`
	Status        string `json:"status"`
}

// Recipient returns the best contact for the notice.
func (n AttendanceNotice) Recipient() string {
	if n.GuardianEmail != "" {
		return n.GuardianEmail
	}
	return n.GuardianPhone
}

// Message renders the guardian-facing text.
func (n AttendanceNotice) Message() string {
	return fmt.Sprintf("%s was marked %s on %s.", n.StudentName, n.Status, n.Date)
}

// NotificationSink delivers a single notice.
type NotificationSink interface {
	Deliver(ctx context.Context, notice AttendanceNotice) error
}

// Notifier is a bounded outbox drained by background workers. Enqueue never
// blocks the caller; notices that do not fit are dropped.
type Notifier interface {
	Enqueue(notice AttendanceNotice) bool
	Start(ctx context.Context)
	Close()
}

type notifier struct {
	sink    NotificationSink
	queue   chan AttendanceNotice
	workers int
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewNotifier constructs an outbox with the given buffer and worker count.
func NewNotifier(sink NotificationSink, buffer, workers int, logger zerolog.Logger) Notifier {
	if buffer <= 0 {
		buffer = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &notifier{
		sink:    sink,
		queue:   make(chan AttendanceNotice, buffer),
		workers: workers,
		logger:  logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *notifier) Enqueue(notice AttendanceNotice) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		observability.Notifications().WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case n.queue <- notice:
		observability.Notifications().WithLabelValues("enqueued").Inc()
		return true
	default:
		observability.Notifications().WithLabelValues("dropped").Inc()
		n.logger.Warn().Uint("student_id", notice.StudentID).Msg("notification queue full, dropping notice")
		return false
	}
}

func (n *notifier) Start(ctx context.Context) {
	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.work(ctx)
	}
}

// Close stops accepting notices and waits for queued ones to drain.
func (n *notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	n.wg.Wait()
}

func (n *notifier) work(ctx context.Context) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-n.queue:
			if !ok {
				return
			}
			n.deliver(notice)
		}
	}
}

func (n *notifier) deliver(notice AttendanceNotice) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := n.sink.Deliver(ctx, notice); err != nil {
		observability.Notifications().WithLabelValues("failed").Inc()
		n.logger.Warn().Err(err).
			Uint("school_id", notice.SchoolID).
			Uint("student_id", notice.StudentID).
			Str("recipient", maskRecipient(notice.Recipient())).
			Msg("attendance notification failed")
		return
	}
	observability.Notifications().WithLabelValues("sent").Inc()
}

// LedgerSink records every notice in the notifications table and publishes
// it on NATS when a connection is available.
type LedgerSink struct {
	repo    repository.NotificationRepository
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
}

type notificationEvent struct {
	Type   string           `json:"type"`
	Notice AttendanceNotice `json:"notice"`
	SentAt time.Time        `json:"sent_at"`
}

// NewLedgerSink constructs the default notification sink. natsConn may be nil.
func NewLedgerSink(repo repository.NotificationRepository, natsConn *nats.Conn, subject string, logger zerolog.Logger) *LedgerSink {
	return &LedgerSink{
		repo:    repo,
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "notification_sink").Logger(),
	}
}

func (s *LedgerSink) Deliver(ctx context.Context, notice AttendanceNotice) error {
	record := models.Notification{
		SchoolID:  notice.SchoolID,
		StudentID: notice.StudentID,
		Type:      notificationTypeAttendance,
		Recipient: notice.Recipient(),
		Message:   notice.Message(),
		Status:    models.NotificationStatusSent,
	}

	publishErr := s.publish(notice)
	if publishErr != nil {
		record.Status = models.NotificationStatusFailed
		record.Error = publishErr.Error()
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		return err
	}
	return publishErr
}

func (s *LedgerSink) publish(notice AttendanceNotice) error {
	if s.nats == nil || s.subject == "" {
		return nil
	}

	payload, err := json.Marshal(notificationEvent{
		Type:   notificationTypeAttendance,
		Notice: notice,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.nats.Publish(s.subject, payload)
}
