package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/services"
)

// BookingReminderTaskDef sends a reminder ahead of each confirmed session.
// Bookings are stamped with reminder_sent_at so an overlapping sweep never
// reminds twice.
type BookingReminderTaskDef struct {
	notifier *services.NotificationService
	loc      *time.Location
}

// TaskID returns the unique identifier for this task
func (t *BookingReminderTaskDef) TaskID() string {
	return "booking_reminders"
}

// HandleExecution reminds users of confirmed sessions starting soon
func (t *BookingReminderTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	lead := 2 * time.Hour
	if v, ok := task.Arguments["lead_minutes"].(float64); ok && v > 0 {
		lead = time.Duration(v) * time.Minute
	}

	now := time.Now().In(t.loc)
	from := now.Format("2006-01-02 15:04")
	until := now.Add(lead).Format("2006-01-02 15:04")

	var upcoming []models.Booking
	err := db.WithContext(ctx).
		Where("status IN ? AND reminder_sent_at IS NULL AND (scheduled_date || ' ' || scheduled_time) BETWEEN ? AND ?",
			[]models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusRescheduled}, from, until).
		Find(&upcoming).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming bookings: %w", err)
	}

	sent := 0
	for i := range upcoming {
		if ctx.Err() != nil {
			break
		}
		booking := &upcoming[i]

		// Claim the booking before sending; a concurrent sweep loses the
		// conditional update and skips it.
		res := db.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ? AND reminder_sent_at IS NULL", booking.ID).
			Update("reminder_sent_at", time.Now())
		if res.Error != nil || res.RowsAffected == 0 {
			continue
		}

		t.notifier.DispatchBookingEvent(ctx, services.EventBookingReminder, booking, nil)
		sent++
	}

	return map[string]interface{}{
		"status":  "success",
		"checked": len(upcoming),
		"sent":    sent,
	}, nil
}

// MarkNoShowsTaskDef marks bookings whose session start passed without a
// check-in. The grace period absorbs late arrivals and clock skew.
type MarkNoShowsTaskDef struct {
	bookings *services.BookingService
}

// TaskID returns the unique identifier for this task
func (t *MarkNoShowsTaskDef) TaskID() string {
	return "mark_no_shows"
}

// HandleExecution moves overdue un-attended bookings to no_show
func (t *MarkNoShowsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	grace := 30 * time.Minute
	if v, ok := task.Arguments["grace_minutes"].(float64); ok && v > 0 {
		grace = time.Duration(v) * time.Minute
	}

	cutoff := time.Now().In(t.bookings.Location()).Add(-grace).Format("2006-01-02 15:04")

	var overdue []models.Booking
	err := db.WithContext(ctx).
		Where("status IN ? AND checked_in_at IS NULL AND (scheduled_date || ' ' || scheduled_time) < ?",
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusRescheduled}, cutoff).
		Limit(200).
		Find(&overdue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overdue bookings: %w", err)
	}

	marked := 0
	for _, booking := range overdue {
		if ctx.Err() != nil {
			break
		}
		if _, err := t.bookings.MarkNoShow(ctx, booking.ID); err != nil {
			// Lost the race to a check-in or cancellation; nothing to do
			if !errors.Is(err, services.ErrStateConflict) {
				log.Printf("[Task: %s] failed to mark booking %d: %v", t.TaskID(), booking.ID, err)
			}
			continue
		}
		marked++
	}

	return map[string]interface{}{
		"status":  "success",
		"checked": len(overdue),
		"marked":  marked,
	}, nil
}
