package dispatch

import (
	"context"
	"fmt"
	"log"
	"time"

	"chatlink-service/internal/models"
	"chatlink-service/internal/observability"
	"chatlink-service/internal/repositories"
	"chatlink-service/internal/telemetry"
	"chatlink-service/internal/ws"
)

// DefaultInterval is the production dispatch cadence.
const DefaultInterval = time.Minute

// Dispatcher polls storage for due scheduled messages and reminders and
// delivers them through the live-connection router. Delivery is
// best-effort: an offline recipient is skipped and the item is still
// marked sent, with no retry on reconnect.
type Dispatcher struct {
	schedules     repositories.ScheduleRepository
	reminders     repositories.ReminderRepository
	messages      repositories.MessageRepository
	notifications repositories.NotificationRepository
	router        *ws.Router
	audit         *telemetry.AuditEmitter
	interval      time.Duration
	now           func() time.Time
}

// New constructs a Dispatcher.
func New(
	schedules repositories.ScheduleRepository,
	reminders repositories.ReminderRepository,
	messages repositories.MessageRepository,
	notifications repositories.NotificationRepository,
	router *ws.Router,
	audit *telemetry.AuditEmitter,
	interval time.Duration,
) *Dispatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Dispatcher{
		schedules:     schedules,
		reminders:     reminders,
		messages:      messages,
		notifications: notifications,
		router:        router,
		audit:         audit,
		interval:      interval,
		now:           time.Now,
	}
}

// Run executes ticks until ctx is cancelled. A tick runs to completion
// before the next timer firing is read, so ticks never overlap; a tick
// longer than the interval simply delays the next one.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick performs one full due-item scan and delivery pass. Failures on
// one item never abort the remaining items.
func (d *Dispatcher) Tick(ctx context.Context) {
	start := d.now()
	defer func() {
		observability.ObserveDispatchTick(time.Since(start))
	}()

	sentMessages := d.dispatchScheduledMessages(ctx, start)
	sentReminders := d.dispatchReminders(ctx, start)

	if sentMessages > 0 || sentReminders > 0 {
		log.Printf("dispatched %d scheduled messages and %d reminders", sentMessages, sentReminders)
		d.audit.Emit(ctx, "info",
			fmt.Sprintf("dispatched %d scheduled messages and %d reminders", sentMessages, sentReminders),
			"", nil)
	}
}

func (d *Dispatcher) dispatchScheduledMessages(ctx context.Context, now time.Time) int {
	due, err := d.schedules.ListDue(ctx, now)
	if err != nil {
		log.Printf("dispatch: list due scheduled messages: %v", err)
		return 0
	}

	sent := 0
	for _, item := range due {
		msg, err := d.messages.CreateDirectMessage(ctx, item.SenderID, item.ReceiverID, item.Text, item.Image)
		if err != nil {
			// Without the materialized message there is nothing to
			// deliver; leave is_sent untouched so the next tick
			// retries.
			log.Printf("dispatch: materialize scheduled message %d: %v", item.ID, err)
			continue
		}

		// Both sides get the message: it was never in either client's
		// live state.
		d.router.ToUser(item.ReceiverID, models.EventNewMessage, msg)
		d.router.ToUser(item.SenderID, models.EventNewMessage, msg)

		d.notify(ctx, item.ReceiverID, fmt.Sprintf("Scheduled message from %d delivered.", item.SenderID), now)
		d.notify(ctx, item.SenderID, fmt.Sprintf("Your scheduled message to %d was sent.", item.ReceiverID), now)

		if err := d.schedules.MarkSent(ctx, item.ID); err != nil {
			log.Printf("dispatch: mark scheduled message %d sent: %v", item.ID, err)
			continue
		}
		sent++
		observability.IncDispatchedItem("scheduled_message")
	}
	return sent
}

func (d *Dispatcher) dispatchReminders(ctx context.Context, now time.Time) int {
	due, err := d.reminders.ListDue(ctx, now)
	if err != nil {
		log.Printf("dispatch: list due reminders: %v", err)
		return 0
	}

	sent := 0
	for _, item := range due {
		d.notify(ctx, item.UserID, "Reminder: "+item.Text, now)

		if err := d.reminders.MarkSent(ctx, item.ID); err != nil {
			log.Printf("dispatch: mark reminder %d sent: %v", item.ID, err)
			continue
		}
		sent++
		observability.IncDispatchedItem("reminder")
	}
	return sent
}

// notify persists a notification row and routes newNotification to its
// owner. Routing failure is a normal offline miss, never an error.
func (d *Dispatcher) notify(ctx context.Context, userID int64, text string, now time.Time) {
	if _, err := d.notifications.CreateNotification(ctx, userID, text); err != nil {
		log.Printf("dispatch: persist notification for %d: %v", userID, err)
	}
	d.router.ToUser(userID, models.EventNewNotification, models.NotificationEvent{Text: text, Timestamp: now})
}
