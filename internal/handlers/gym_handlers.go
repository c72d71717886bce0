package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/services"
)

const gymCacheTTL = 5 * time.Minute

type GymHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewGymHandler(db *gorm.DB, cache *services.RedisCache) *GymHandler {
	return &GymHandler{db: db, cache: cache}
}

// ListGyms returns active gyms, optionally filtered by city
func (h *GymHandler) ListGyms(c echo.Context) error {
	city := c.QueryParam("city")
	key := "gyms:city:" + city

	gyms, err := services.GetOrSet(h.cache, c.Request().Context(), key, gymCacheTTL, func() ([]models.Gym, error) {
		var gyms []models.Gym
		q := h.db.WithContext(c.Request().Context()).Where("is_active = ?", true)
		if city != "" {
			q = q.Where("city = ?", city)
		}
		err := q.Order("name asc").Find(&gyms).Error
		return gyms, err
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch gyms")
	}
	return c.JSON(http.StatusOK, gyms)
}

// GetGym returns one gym with its trainers
func (h *GymHandler) GetGym(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid gym ID")
	}
	key := fmt.Sprintf("gyms:%d", id)

	gym, err := services.GetOrSet(h.cache, c.Request().Context(), key, gymCacheTTL, func() (models.Gym, error) {
		var gym models.Gym
		err := h.db.WithContext(c.Request().Context()).
			Preload("Trainers", "is_active = ?", true).
			First(&gym, uint(id)).Error
		return gym, err
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Gym not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch gym")
	}
	return c.JSON(http.StatusOK, gym)
}

// ListTrainers returns active trainers, optionally filtered by gym
func (h *GymHandler) ListTrainers(c echo.Context) error {
	gymID := c.QueryParam("gym_id")
	key := "trainers:gym:" + gymID

	trainers, err := services.GetOrSet(h.cache, c.Request().Context(), key, gymCacheTTL, func() ([]models.Trainer, error) {
		var trainers []models.Trainer
		q := h.db.WithContext(c.Request().Context()).Where("is_active = ?", true)
		if gymID != "" {
			q = q.Where("gym_id = ?", gymID)
		}
		err := q.Order("name asc").Find(&trainers).Error
		return trainers, err
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch trainers")
	}
	return c.JSON(http.StatusOK, trainers)
}
