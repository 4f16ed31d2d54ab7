package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

type QuizHandler struct {
	db     *gorm.DB
	logger *utils.Logger
}

func NewQuizHandler(db *gorm.DB, logger *utils.Logger) *QuizHandler {
	return &QuizHandler{
		db:     db,
		logger: logger,
	}
}

// AddQuestion handles POST /api/questions/add-question
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	var req struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correctAnswer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.Question == "" || len(req.Options) == 0 || req.CorrectAnswer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	if len(req.Options) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly 4 options are required"})
		return
	}

	question := models.Question{
		Question:      req.Question,
		Options:       models.StringList(req.Options),
		CorrectAnswer: req.CorrectAnswer,
	}

	if err := h.db.Create(&question).Error; err != nil {
		h.logger.Error("failed to create question", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Question added successfully",
		"newQuestion": question,
	})
}

// ListQuestions handles GET /api/questions
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	var questions []models.Question
	if err := h.db.Find(&questions).Error; err != nil {
		h.logger.Error("failed to fetch questions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, questions)
}

// DeleteQuestion handles DELETE /api/questions/delete-question/:id
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	result := h.db.Delete(&models.Question{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		h.logger.Error("failed to delete question", "error", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// SaveAttempt handles POST /api/questions/save-attempt
func (h *QuizHandler) SaveAttempt(c *gin.Context) {
	var req struct {
		Score          int `json:"score"`
		TotalQuestions int `json:"totalQuestions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.TotalQuestions <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid attempt"})
		return
	}

	attempt := models.QuizAttempt{
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		Percentage:     int(math.Round(float64(req.Score) / float64(req.TotalQuestions) * 100)),
	}

	if err := h.db.Create(&attempt).Error; err != nil {
		h.logger.Error("failed to save quiz attempt", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": attempt})
}

// AttemptCount handles GET /api/questions/quizcount
func (h *QuizHandler) AttemptCount(c *gin.Context) {
	var count int64
	if err := h.db.Model(&models.QuizAttempt{}).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
