package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"firebase.google.com/go/v4/messaging"
	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
)

// BookingEvent names a lifecycle event emitted to the dispatcher
type BookingEvent string

const (
	EventBookingConfirmed BookingEvent = "booking_confirmed"
	EventSessionStarted   BookingEvent = "session_started"
	EventSessionCompleted BookingEvent = "session_completed"
	EventRescheduled      BookingEvent = "rescheduled"
	EventCanceled         BookingEvent = "canceled"
	EventBookingReminder  BookingEvent = "booking_reminder"
	EventRefundProcessed  BookingEvent = "refund_processed"
)

var eventTitles = map[BookingEvent]string{
	EventBookingConfirmed: "Booking confirmed",
	EventSessionStarted:   "Session started",
	EventSessionCompleted: "Session completed",
	EventRescheduled:      "Booking rescheduled",
	EventCanceled:         "Booking canceled",
	EventBookingReminder:  "Upcoming session",
	EventRefundProcessed:  "Refund processed",
}

// NotificationService delivers lifecycle events to users. Dispatch is
// fire-and-forget: failures are logged and never retried inline, and they
// never roll back the state transition that produced the event.
type NotificationService struct {
	db        *gorm.DB
	messaging *messaging.Client
	email     *EmailService
}

func NewNotificationService(db *gorm.DB, messagingClient *messaging.Client, email *EmailService) *NotificationService {
	return &NotificationService{db: db, messaging: messagingClient, email: email}
}

// DispatchBookingEvent builds a well-formed event payload for a booking and
// delivers it through the user's preferred channel. The extra map can carry
// refund details on cancellation events.
func (s *NotificationService) DispatchBookingEvent(ctx context.Context, event BookingEvent, booking *models.Booking, extra map[string]string) {
	if booking == nil {
		return
	}

	data := map[string]string{
		"event":          string(event),
		"booking_id":     strconv.FormatUint(uint64(booking.ID), 10),
		"booking_ref":    booking.Reference,
		"status":         string(booking.Status),
		"scheduled_date": booking.ScheduledDate,
		"scheduled_time": booking.ScheduledTime,
	}
	for k, v := range extra {
		data[k] = v
	}

	body := fmt.Sprintf("%s session on %s at %s", booking.BookingType, booking.ScheduledDate, booking.ScheduledTime)
	if event == EventCanceled {
		if refund, ok := extra["refund_amount"]; ok && refund != "0.00" {
			body = fmt.Sprintf("Booking canceled. Refund of %s %s is pending.", booking.Currency, refund)
		} else {
			body = "Booking canceled. No refund applies under the cancellation policy."
		}
	}
	if event == EventRefundProcessed {
		body = fmt.Sprintf("Your refund of %s has been processed.", money.Format(booking.Price, booking.Currency))
		if refund, ok := extra["refund_amount"]; ok {
			body = fmt.Sprintf("Your refund of %s %s has been processed.", booking.Currency, refund)
		}
	}

	s.dispatch(ctx, booking.UserID, eventTitles[event], body, data)
}

// dispatch resolves the user's channel preference and sends. Errors are
// logged, not returned.
func (s *NotificationService) dispatch(ctx context.Context, userID uint, title, body string, data map[string]string) {
	var pref models.UserNotifPreference
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Notification preference lookup failed for user %d: %v", userID, err)
		}
		pref.Channel = models.NotificationChannelPush
	}

	switch pref.Channel {
	case models.NotificationChannelEmail:
		s.sendEmail(ctx, userID, title, body)
	default:
		s.sendPush(ctx, userID, title, body, data)
	}
}

func (s *NotificationService) sendPush(ctx context.Context, userID uint, title, body string, data map[string]string) {
	if s.messaging == nil {
		log.Printf("Push notification skipped for user %d: messaging not configured", userID)
		return
	}

	var tokens []models.DeviceToken
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		log.Printf("Device token lookup failed for user %d: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	for _, t := range tokens {
		msg := &messaging.Message{
			Token: t.Token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					ChannelID: "sixfinity_bookings",
				},
			},
		}
		if _, err := s.messaging.Send(ctx, msg); err != nil {
			log.Printf("Push notification to user %d failed: %v", userID, err)
		}
	}
}

func (s *NotificationService) sendEmail(ctx context.Context, userID uint, subject, body string) {
	if s.email == nil {
		log.Printf("Email notification skipped for user %d: SMTP not configured", userID)
		return
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		log.Printf("User lookup for email notification failed for user %d: %v", userID, err)
		return
	}
	if err := s.email.SendEmail([]string{user.Email}, subject, body); err != nil {
		log.Printf("Email notification to user %d failed: %v", userID, err)
	}
}
