package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sixfinity_gym/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetProfile returns the authenticated user's record
func (h *UserHandler) GetProfile(c echo.Context) error {
	var user models.User
	if err := h.db.WithContext(c.Request().Context()).
		First(&user, getUintFromContext(c, "userID")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// UpdateProfile updates the fields the checkout form needs
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	var user models.User
	if err := h.db.WithContext(c.Request().Context()).
		First(&user, getUintFromContext(c, "userID")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.City != "" {
		user.City = req.City
	}
	if req.Country != "" {
		user.Country = req.Country
	}

	if err := h.db.WithContext(c.Request().Context()).Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

type registerDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// RegisterDevice stores an FCM registration token. Re-registering an
// existing token moves it to the current user, which covers shared devices.
func (h *UserHandler) RegisterDevice(c echo.Context) error {
	var req registerDeviceRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	token := models.DeviceToken{
		UserID:   getUintFromContext(c, "userID"),
		Token:    req.Token,
		Platform: req.Platform,
	}
	err := h.db.WithContext(c.Request().Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(&token).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register device")
	}
	return c.JSON(http.StatusOK, token)
}

// UnregisterDevice removes an FCM token, e.g. on sign-out
func (h *UserHandler) UnregisterDevice(c echo.Context) error {
	var req registerDeviceRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	err := h.db.WithContext(c.Request().Context()).
		Where("token = ? AND user_id = ?", req.Token, getUintFromContext(c, "userID")).
		Delete(&models.DeviceToken{}).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unregister device")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetNotifPreference returns the user's notification preference, creating
// the default row on first read.
func (h *UserHandler) GetNotifPreference(c echo.Context) error {
	userID := getUintFromContext(c, "userID")

	var pref models.UserNotifPreference
	err := h.db.WithContext(c.Request().Context()).
		Where(models.UserNotifPreference{UserID: userID}).
		Attrs(models.UserNotifPreference{
			Channel:       models.NotificationChannelPush,
			BookingEvents: true,
			PaymentEvents: true,
			Reminders:     true,
		}).
		FirstOrCreate(&pref).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch preference")
	}
	return c.JSON(http.StatusOK, pref)
}

type updatePreferenceRequest struct {
	Channel       models.NotificationChannel `json:"channel"`
	BookingEvents *bool                      `json:"booking_events"`
	PaymentEvents *bool                      `json:"payment_events"`
	Reminders     *bool                      `json:"reminders"`
}

// UpdateNotifPreference updates the channel and per-event opt-outs
func (h *UserHandler) UpdateNotifPreference(c echo.Context) error {
	var req updatePreferenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Channel != "" && req.Channel != models.NotificationChannelPush && req.Channel != models.NotificationChannelEmail {
		return echo.NewHTTPError(http.StatusBadRequest, "channel must be push or email")
	}

	userID := getUintFromContext(c, "userID")

	var pref models.UserNotifPreference
	err := h.db.WithContext(c.Request().Context()).
		Where(models.UserNotifPreference{UserID: userID}).
		FirstOrCreate(&pref).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch preference")
	}

	if req.Channel != "" {
		pref.Channel = req.Channel
	}
	if req.BookingEvents != nil {
		pref.BookingEvents = *req.BookingEvents
	}
	if req.PaymentEvents != nil {
		pref.PaymentEvents = *req.PaymentEvents
	}
	if req.Reminders != nil {
		pref.Reminders = *req.Reminders
	}

	if err := h.db.WithContext(c.Request().Context()).Save(&pref).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update preference")
	}
	return c.JSON(http.StatusOK, pref)
}
