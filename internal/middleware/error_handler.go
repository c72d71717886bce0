package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorResponse is the JSON envelope every error leaves the API in
type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// CustomErrorHandler creates a custom error handler for Echo. The API is
// consumed by the mobile client, so every error is rendered as JSON.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again later."

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			switch code {
			case http.StatusNotFound:
				message = "The resource you're looking for doesn't exist."
			case http.StatusForbidden:
				message = "You don't have permission to access this resource."
			case http.StatusUnauthorized:
				message = "Please log in to continue."
			case http.StatusBadRequest:
				message = "The request could not be processed."
			case http.StatusConflict:
				message = "The resource is not in a state that allows this operation."
			}
		}
	}

	// Log the error
	c.Logger().Error(err)

	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(code); err != nil {
			c.Logger().Error(err)
		}
		return
	}

	if err := c.JSON(code, errorResponse{Error: message, Code: code}); err != nil {
		c.Logger().Error(err)
	}
}
