package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

const tokenLifetime = 7 * 24 * time.Hour

type AuthHandler struct {
	db        *gorm.DB
	jwtSecret string
	logger    *utils.Logger
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{
		db:        db,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and password are required"})
		return
	}

	var existing models.User
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.Error("failed to check existing user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Status:   models.StatusInactive,
	}

	if err := h.db.Create(&user).Error; err != nil {
		h.logger.Error("failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	token, err := h.issueToken(&user)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"id":     user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"avatar": user.Avatar,
		},
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Email and password are required",
		})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid credentials",
			})
			return
		}
		h.logger.Error("login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Invalid credentials",
		})
		return
	}

	token, err := h.issueToken(&user)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"user":   user,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "User not found",
			})
			return
		}
		h.logger.Error("failed to load user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"user": gin.H{
			"_id":    user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"avatar": user.Avatar,
		},
	})
}

// AllUsers handles GET /api/auth/allusers
func (h *AuthHandler) AllUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Find(&users).Error; err != nil {
		h.logger.Error("failed to fetch users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "failed",
			"message": "Failed to fetch users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "users": users})
}

// UserCount handles GET /api/auth/usercount
func (h *AuthHandler) UserCount(c *gin.Context) {
	var count int64
	if err := h.db.Model(&models.User{}).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; real logout is
// the websocket falling edge.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

// DeleteUser handles DELETE /api/auth/deleteuser/:id
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	result := h.db.Delete(&models.User{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		h.logger.Error("failed to delete user", "user_id", c.Param("id"), "error", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Server error while deleting user",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "User deleted successfully",
	})
}

// UpdateStatus handles PUT /api/auth/status/:userId — a manual override that
// applies the same timestamp rules as the presence transition function.
func (h *AuthHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil ||
		(req.Status != models.StatusActive && req.Status != models.StatusInactive) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid status value",
		})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("userId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "User not found",
			})
			return
		}
		h.logger.Error("failed to load user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to update user status",
		})
		return
	}

	now := time.Now()
	user.Status = req.Status
	if req.Status == models.StatusActive {
		user.LastActive = &now
		user.LastLogin = &now
	} else {
		user.LastLogout = &now
	}

	if err := h.db.Save(&user).Error; err != nil {
		h.logger.Error("failed to update user status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to update user status",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "User status updated",
		"user": gin.H{
			"_id":        user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"status":     user.Status,
			"lastActive": user.LastActive,
			"lastLogin":  user.LastLogin,
			"lastLogout": user.LastLogout,
		},
	})
}

func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
