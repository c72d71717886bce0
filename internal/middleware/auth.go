package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
)

// RequireAuth returns a middleware that verifies Firebase ID tokens sent by
// the mobile client as a Bearer header and resolves the local user record.
func RequireAuth(authClient *auth.Client, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Check if Firebase is initialized
			if authClient == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Authentication is not configured")
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			decodedToken, err := authClient.VerifyIDToken(c.Request().Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			// Resolve the local user, creating it on first sight
			var user models.User
			err = db.WithContext(c.Request().Context()).Where("firebase_uid = ?", decodedToken.UID).First(&user).Error
			if err == gorm.ErrRecordNotFound {
				user = models.User{FirebaseUID: decodedToken.UID}
				if email, ok := decodedToken.Claims["email"].(string); ok {
					user.Email = email
				}
				if name, ok := decodedToken.Claims["name"].(string); ok {
					user.Name = name
				}
				if err := db.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "Failed to provision user")
				}
			} else if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
			}

			// Set user info in context for downstream handlers
			c.Set("userID", user.ID)
			c.Set("userUID", user.FirebaseUID)
			c.Set("userEmail", user.Email)
			c.Set("userType", string(user.UserType))

			return next(c)
		}
	}
}

// RequireAdmin gates admin-only endpoints; must run after RequireAuth
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userType, _ := c.Get("userType").(string); userType != string(models.UserTypeAdmin) {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}
