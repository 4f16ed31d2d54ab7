package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

type PlantHandler struct {
	db     *gorm.DB
	logger *utils.Logger
}

func NewPlantHandler(db *gorm.DB, logger *utils.Logger) *PlantHandler {
	return &PlantHandler{
		db:     db,
		logger: logger,
	}
}

// ListPlants handles GET /api/plants
func (h *PlantHandler) ListPlants(c *gin.Context) {
	var plants []models.Plant
	if err := h.db.Find(&plants).Error; err != nil {
		h.logger.Error("failed to fetch plants", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, plants)
}

// GetPlant handles GET /api/plants/:id
func (h *PlantHandler) GetPlant(c *gin.Context) {
	var plant models.Plant
	if err := h.db.First(&plant, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Plant not found"})
			return
		}
		h.logger.Error("failed to load plant", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, plant)
}

// CreatePlant handles POST /api/plants (admin dashboard use)
func (h *PlantHandler) CreatePlant(c *gin.Context) {
	var plant models.Plant
	if err := c.ShouldBindJSON(&plant); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.db.Create(&plant).Error; err != nil {
		h.logger.Error("failed to create plant", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, plant)
}
