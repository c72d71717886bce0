package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"sixfinity_gym/internal/services"
)

// getUintFromContext reads a uint value set by the auth middleware
func getUintFromContext(c echo.Context, key string) uint {
	if val, ok := c.Get(key).(uint); ok {
		return val
	}
	return 0
}

// getStringFromContext reads a string value set by the auth middleware
func getStringFromContext(c echo.Context, key string) string {
	if val, ok := c.Get(key).(string); ok {
		return val
	}
	return ""
}

// isAdmin reports whether the authenticated user is an admin
func isAdmin(c echo.Context) bool {
	return getStringFromContext(c, "userType") == "Admin"
}

// httpError maps the service error taxonomy onto HTTP status codes.
// Validation and state conflicts resolve locally; gateway failures come
// back as failed results, not as transport errors.
func httpError(err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Error())
	}

	switch {
	case errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrTransactionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrStateConflict),
		errors.Is(err, services.ErrAlreadyCanceled),
		errors.Is(err, services.ErrNotCancelable),
		errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, services.ErrPaymentInFlight):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUnsupportedCurrency),
		errors.Is(err, services.ErrAmountMismatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var gatewayErr *services.GatewayError
	if errors.As(err, &gatewayErr) {
		return echo.NewHTTPError(http.StatusBadGateway, gatewayErr.Error())
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
