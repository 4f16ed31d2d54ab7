package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers missing, malformed, expired, and badly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the verified identity of a request or websocket connection
type Claims struct {
	UserID  string
	IsAdmin bool
}

// VerifyToken validates a bearer token and extracts its claims. It has no side
// effects and treats every failure mode as a rejection.
func VerifyToken(tokenString, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := mapClaims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	isAdmin, _ := mapClaims["is_admin"].(bool)

	return &Claims{UserID: userID, IsAdmin: isAdmin}, nil
}

// Auth enforces JWT authentication on HTTP routes
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := VerifyToken(extractToken(c.Request), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid or missing token",
			})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("isAdmin", claims.IsAdmin)
		c.Next()
	}
}

func extractToken(r *http.Request) string {
	// Try Authorization header first
	bearerToken := r.Header.Get("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimPrefix(bearerToken, "Bearer ")
	}

	// For WebSocket connections, check query parameter
	return r.URL.Query().Get("token")
}
