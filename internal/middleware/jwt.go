package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

type JWTConfig struct {
	Secret string
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func GenerateToken(userID, username, secret string, expireSeconds int64) (string, error) {
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireSeconds) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// NewJWTAuth rejects requests without a valid bearer token.
func NewJWTAuth(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, cfg.Secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// NewOptionalJWTAuth attaches the actor identity when a valid token is
// present and lets anonymous requests through. Read paths use this so
// viewer-relative flags degrade to false instead of failing.
func NewOptionalJWTAuth(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, cfg.Secret); ok {
			c.Set(userIDKey, claims.UserID)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, secret string) (*Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return nil, false
	}
	claims, err := ParseToken(tokenString, secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetUserID returns the authenticated actor's ID, or "" for anonymous.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
