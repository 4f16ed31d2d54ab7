package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gardenia/backend/models"
	"gardenia/backend/services"
	"gardenia/backend/utils"
)

const maxUploadSize = 5 << 20 // 5MB

var wateringFrequencyPattern = regexp.MustCompile(`\d+`)

type ReminderHandler struct {
	db        *gorm.DB
	email     *services.EmailService
	uploadDir string
	logger    *utils.Logger
}

func NewReminderHandler(db *gorm.DB, email *services.EmailService, uploadDir string, logger *utils.Logger) *ReminderHandler {
	return &ReminderHandler{
		db:        db,
		email:     email,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// ListReminders handles GET /api/plantreminder
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	var plants []models.ReminderPlant
	if err := h.db.Order("next_watering ASC").Find(&plants).Error; err != nil {
		h.logger.Error("failed to fetch reminder plants", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": plants})
}

// CreateReminder handles POST /api/plantreminder. Accepts a multipart image
// upload or an imageUrl field; sends a welcome mail when notifications are on.
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	imageURL, err := h.saveUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if imageURL == "" {
		imageURL = c.PostForm("imageUrl")
	}
	if imageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Image required"})
		return
	}

	frequency, err := strconv.Atoi(c.PostForm("wateringFrequency"))
	if err != nil || frequency < 1 {
		frequency = 7
	}

	now := time.Now()
	plant := models.ReminderPlant{
		Name:         c.PostForm("name"),
		Location:     c.PostForm("location"),
		ImageURL:     imageURL,
		NextWatering: now.AddDate(0, 0, frequency),
		LastWatered:  now,
		CareSchedule: models.JSONB{
			"watering":    fmt.Sprintf("Every %d days", frequency),
			"fertilizing": "Monthly",
			"pruning":     "As needed",
		},
		Notifications: c.PostForm("notifications") != "false",
		UserEmail:     c.PostForm("userEmail"),
	}

	if err := h.db.Create(&plant).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if plant.Notifications && plant.UserEmail != "" {
		h.email.SendNotification(plant.UserEmail,
			fmt.Sprintf("Welcome to Plant Care for %s", plant.Name),
			fmt.Sprintf("You've successfully added %s to your plant care tracker. Your next watering is scheduled for %s.",
				plant.Name, plant.NextWatering.Format("Mon Jan 2 2006")))
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": plant})
}

// WaterReminder handles PUT /api/plantreminder/:id/water
func (h *ReminderHandler) WaterReminder(c *gin.Context) {
	var plant models.ReminderPlant
	if err := h.db.First(&plant, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Plant not found"})
			return
		}
		h.logger.Error("failed to load reminder plant", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}

	frequency := wateringFrequency(plant.CareSchedule)

	now := time.Now()
	plant.LastWatered = now
	plant.NextWatering = now.AddDate(0, 0, frequency)

	if err := h.db.Save(&plant).Error; err != nil {
		h.logger.Error("failed to save reminder plant", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}

	if plant.Notifications && plant.UserEmail != "" {
		h.email.SendNotification(plant.UserEmail,
			fmt.Sprintf("Watering Confirmation for %s", plant.Name),
			fmt.Sprintf("You've successfully watered %s. Next watering is scheduled for %s.",
				plant.Name, plant.NextWatering.Format("Mon Jan 2 2006")))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": plant})
}

// DeleteReminder handles DELETE /api/plantreminder/:id
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	var plant models.ReminderPlant
	if err := h.db.First(&plant, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Plant not found"})
			return
		}
		h.logger.Error("failed to load reminder plant", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}

	if err := h.db.Delete(&plant).Error; err != nil {
		h.logger.Error("failed to delete reminder plant", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}

	// Remove the image file if it was one of ours.
	if strings.HasPrefix(plant.ImageURL, "/uploads/") {
		path := filepath.Join(h.uploadDir, filepath.Base(plant.ImageURL))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("failed to remove plant image", "path", path, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// saveUpload stores an optional multipart image and returns its public URL.
func (h *ReminderHandler) saveUpload(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		// No file attached; the caller may use imageUrl instead.
		return "", nil
	}

	if file.Size > maxUploadSize {
		return "", errors.New("Image exceeds 5MB limit")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", errors.New("Only JPEG/PNG images allowed")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return "/uploads/" + name, nil
}

// wateringFrequency extracts the day count from a schedule like "Every 7 days".
func wateringFrequency(schedule models.JSONB) int {
	watering, _ := schedule["watering"].(string)
	match := wateringFrequencyPattern.FindString(watering)
	if match == "" {
		return 7
	}
	frequency, err := strconv.Atoi(match)
	if err != nil || frequency < 1 {
		return 7
	}
	return frequency
}
