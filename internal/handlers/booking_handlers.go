package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/money"
	"sixfinity_gym/internal/services"
)

type BookingHandler struct {
	db            *gorm.DB
	bookings      *services.BookingService
	cancellations *services.CancellationService
}

func NewBookingHandler(db *gorm.DB, bookings *services.BookingService, cancellations *services.CancellationService) *BookingHandler {
	return &BookingHandler{db: db, bookings: bookings, cancellations: cancellations}
}

// loadOwnedBooking fetches a booking and checks the caller may act on it
func (h *BookingHandler) loadOwnedBooking(c echo.Context) (*models.Booking, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid booking ID")
	}

	booking, err := h.bookings.Get(c.Request().Context(), uint(id))
	if err != nil {
		return nil, httpError(err)
	}

	if booking.UserID != getUintFromContext(c, "userID") && !isAdmin(c) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Booking does not belong to this user")
	}
	return booking, nil
}

type createBookingRequest struct {
	GymID           *uint                  `json:"gym_id"`
	TrainerID       *uint                  `json:"trainer_id"`
	BookingType     string                 `json:"booking_type"`
	ScheduledDate   string                 `json:"scheduled_date"`
	ScheduledTime   string                 `json:"scheduled_time"`
	DurationMinutes int                    `json:"duration_minutes"`
	Price           float64                `json:"price"`
	Currency        string                 `json:"currency"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// CreateBooking creates a new pending booking for the caller
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	booking, err := h.bookings.Create(c.Request().Context(), services.CreateBookingInput{
		UserID:          getUintFromContext(c, "userID"),
		GymID:           req.GymID,
		TrainerID:       req.TrainerID,
		BookingType:     models.BookingType(req.BookingType),
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Currency:        money.Currency(req.Currency),
		Metadata:        req.Metadata,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, booking)
}

// ListBookings returns the caller's bookings, newest first
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID := getUintFromContext(c, "userID")

	query := h.db.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).
		Preload("Gym").Preload("Trainer").
		Order("created_at desc")

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch bookings")
	}

	return c.JSON(http.StatusOK, bookings)
}

// GetBooking returns one booking with its details
func (h *BookingHandler) GetBooking(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var details models.BookingDetails
	if err := h.db.WithContext(c.Request().Context()).Where("booking_id = ?", booking.ID).First(&details).Error; err == nil {
		booking.Details = &details
	}

	return c.JSON(http.StatusOK, booking)
}

// ConfirmBooking moves a pending booking to confirmed. Gym staff and admin
// use this for manually settled bookings; paid bookings confirm through the
// payment flow.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	updated, err := h.bookings.Confirm(c.Request().Context(), booking.ID, getStringFromContext(c, "userUID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

type checkInRequest struct {
	Method string `json:"method"` // qr_code, manual, geofence
}

// CheckIn starts the session for a confirmed booking
func (h *BookingHandler) CheckIn(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var req checkInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Method == "" {
		req.Method = "manual"
	}

	updated, err := h.bookings.CheckIn(c.Request().Context(), booking.ID, req.Method)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// CheckOut completes a checked-in session and records its actual duration
func (h *BookingHandler) CheckOut(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	updated, err := h.bookings.CheckOut(c.Request().Context(), booking.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

type rescheduleRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

// Reschedule moves a confirmed booking to a new date/time; payment fields
// are untouched.
func (h *BookingHandler) Reschedule(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	updated, err := h.bookings.Reschedule(c.Request().Context(), booking.ID, req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// CancelQuote previews the refund a cancellation would yield right now
func (h *BookingHandler) CancelQuote(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	quote, err := h.cancellations.Quote(c.Request().Context(), booking.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, quote)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelBooking terminates a booking under the tiered refund policy
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	role := models.CancellationRoleUser
	if isAdmin(c) {
		role = models.CancellationRoleAdmin
	}

	cancellation, err := h.cancellations.Cancel(c.Request().Context(), services.CancelInput{
		BookingID:     booking.ID,
		InitiatedBy:   getStringFromContext(c, "userUID"),
		InitiatorRole: role,
		Reason:        req.Reason,
		Kind:          models.CancellationKindUserRequested,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cancellation)
}

type rateRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// RateBooking stores a rating on a completed booking
func (h *BookingHandler) RateBooking(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	updated, err := h.bookings.Rate(c.Request().Context(), booking.ID, req.Rating, req.Review)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// BookingHistory returns the completed-session history records
func (h *BookingHandler) BookingHistory(c echo.Context) error {
	booking, err := h.loadOwnedBooking(c)
	if err != nil {
		return err
	}

	var history []models.BookingHistory
	if err := h.db.WithContext(c.Request().Context()).
		Where("booking_id = ?", booking.ID).Order("created_at desc").
		Find(&history).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch history")
	}
	return c.JSON(http.StatusOK, history)
}
