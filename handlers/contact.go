package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type ContactHandler struct {
	db     *gorm.DB
	logger *utils.Logger
}

func NewContactHandler(db *gorm.DB, logger *utils.Logger) *ContactHandler {
	return &ContactHandler{
		db:     db,
		logger: logger,
	}
}

// SubmitContact handles POST /api/contact
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var contact models.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if len(contact.Name) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Name cannot be more than 50 characters"})
		return
	}
	if !emailPattern.MatchString(contact.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Please provide a valid email address"})
		return
	}
	if !models.ValidSubject(contact.Subject) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid subject type"})
		return
	}
	if len(contact.Message) > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Message cannot exceed 1000 characters"})
		return
	}

	if err := h.db.Create(&contact).Error; err != nil {
		h.logger.Error("failed to save contact", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.logger.Info("contact submission saved", "name", contact.Name, "subject", contact.Subject)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message received!"})
}

// ContactCount handles GET /api/contact/contactcount
func (h *ContactHandler) ContactCount(c *gin.Context) {
	var count int64
	if err := h.db.Model(&models.Contact{}).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// ListContacts handles GET /api/contact/contactget
func (h *ContactHandler) ListContacts(c *gin.Context) {
	var contacts []models.Contact
	if err := h.db.Find(&contacts).Error; err != nil {
		h.logger.Error("failed to fetch contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contacts)
}
