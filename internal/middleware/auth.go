// Package middleware provides JWT issuance/validation and the gin
// auth guard. It is authored fresh for this module — the upstream
// snapshot this was built from calls into an internal/middleware
// package with this exact surface (GenerateToken, GenerateRefreshToken,
// ValidateRefreshToken, AuthMiddleware) from cmd/server/main.go and
// internal/api/auth.go, but its source was not included in the pack;
// this implementation follows those call sites and the project's
// golang-jwt/jwt/v5 + gin stack.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by both access and refresh tokens. The
// TokenType field lets ValidateRefreshToken reject an access token
// presented as a refresh token and vice versa.
type Claims struct {
	UserID    int64  `json:"user_id,string"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

func GenerateToken(userID int64, username, secret string, expiryHours int) (string, error) {
	return sign(userID, username, tokenTypeAccess, secret, time.Duration(expiryHours)*time.Hour)
}

func GenerateRefreshToken(userID int64, username, secret string, refreshExpiryDays int) (string, error) {
	return sign(userID, username, tokenTypeRefresh, secret, time.Duration(refreshExpiryDays)*24*time.Hour)
}

func sign(userID int64, username, tokenType, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func parse(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func ValidateRefreshToken(tokenStr, secret string) (*Claims, error) {
	claims, err := parse(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, errors.New("not a refresh token")
	}
	return claims, nil
}

// ValidateAccessToken parses tokenStr and rejects it unless it's an
// access token. Exposed for call sites that aren't gin handlers, such
// as the websocket upgrade, which takes its token from a query param
// rather than the Authorization header.
func ValidateAccessToken(tokenStr, secret string) (*Claims, error) {
	claims, err := parse(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}

// bearerToken extracts the token from either of two accepted carriers:
// an "Authorization: Bearer <token>" header, or a "token" query
// parameter (the only option a browser's websocket client can set
// without a custom-headers API).
func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1], true
		}
		return "", false
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

// AuthMiddleware validates the request's bearer token as an access
// token and stores user_id/username in the gin context for downstream
// handlers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization"})
			return
		}

		claims, err := ValidateAccessToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", strconv.FormatInt(claims.UserID, 10))
		c.Set("user_id_int", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}
