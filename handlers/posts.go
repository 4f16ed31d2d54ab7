package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gardenia/backend/models"
	"gardenia/backend/utils"
)

type PostHandler struct {
	db     *gorm.DB
	logger *utils.Logger
}

func NewPostHandler(db *gorm.DB, logger *utils.Logger) *PostHandler {
	return &PostHandler{
		db:     db,
		logger: logger,
	}
}

// ListPosts handles GET /api/posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	var posts []models.Post
	if err := h.db.Preload("Author").Order("created_at DESC").Find(&posts).Error; err != nil {
		h.logger.Error("failed to fetch posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// CreatePost handles POST /api/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req struct {
		Content string   `json:"content" binding:"required"`
		Image   string   `json:"image"`
		Tags    []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Content is required"})
		return
	}

	authorID, err := requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	post := models.Post{
		AuthorID: authorID,
		Content:  req.Content,
		Image:    req.Image,
		Tags:     models.StringList(req.Tags),
		Likes:    models.LikeList{},
		Comments: models.CommentList{},
	}
	if post.Tags == nil {
		post.Tags = models.StringList{}
	}

	if err := h.db.Create(&post).Error; err != nil {
		h.logger.Error("failed to create post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := h.db.Preload("Author").First(&post, "id = ?", post.ID).Error; err != nil {
		h.logger.Error("failed to reload post", "error", err)
	}

	c.JSON(http.StatusCreated, post)
}

// LikePost handles POST /api/posts/:id/like — toggles the caller's like.
func (h *PostHandler) LikePost(c *gin.Context) {
	userID, err := requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		h.logger.Error("failed to load post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	liked := false
	filtered := make(models.LikeList, 0, len(post.Likes))
	for _, like := range post.Likes {
		if like.UserID == userID {
			liked = true
			continue
		}
		filtered = append(filtered, like)
	}

	if liked {
		post.Likes = filtered
	} else {
		var user models.User
		if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
			h.logger.Error("failed to load liking user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		post.Likes = append(post.Likes, models.Like{UserID: userID, Name: user.Name})
	}

	if err := h.db.Save(&post).Error; err != nil {
		h.logger.Error("failed to save post likes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// CommentPost handles POST /api/posts/:id/comment
func (h *PostHandler) CommentPost(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Content is required"})
		return
	}

	userID, err := requestUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		h.logger.Error("failed to load commenting user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		h.logger.Error("failed to load post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	post.Comments = append(post.Comments, models.Comment{
		AuthorID:   userID,
		AuthorName: user.Name,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	})

	if err := h.db.Save(&post).Error; err != nil {
		h.logger.Error("failed to save post comment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// requestUserID reads the authenticated user id set by the auth middleware.
func requestUserID(c *gin.Context) (uuid.UUID, error) {
	raw, _ := c.Get("userID")
	id, ok := raw.(string)
	if !ok {
		return uuid.Nil, errors.New("missing user id")
	}
	return uuid.Parse(id)
}
