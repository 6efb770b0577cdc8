package api

import (
	"log"
	"net/http"

	"github.com/duskwatch/werewolf/internal/middleware"
	"github.com/duskwatch/werewolf/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type authResponse struct {
	Token        string             `json:"token"`
	RefreshToken string             `json:"refresh_token"`
	User         models.UserDisplay `json:"user"`
}

// CreateUser implements spec.md §6's `POST /users/`.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	u, err := h.st.CreateUser(c.Request.Context(), req.Username, string(hash), displayName, req.Email)
	if err != nil {
		log.Printf("api: create user %q: %v", req.Username, err)
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}

	token, err := middleware.GenerateToken(u.ID, u.Username, h.jwt.Secret, h.jwt.ExpiryHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := middleware.GenerateRefreshToken(u.ID, u.Username, h.jwt.Secret, h.jwt.RefreshExpiryDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate refresh token"})
		return
	}

	c.JSON(http.StatusCreated, authResponse{Token: token, RefreshToken: refreshToken, User: u.Display(false)})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login implements spec.md §6's `POST /users/login/`.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.st.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := middleware.GenerateToken(u.ID, u.Username, h.jwt.Secret, h.jwt.ExpiryHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := middleware.GenerateRefreshToken(u.ID, u.Username, h.jwt.Secret, h.jwt.RefreshExpiryDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate refresh token"})
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, RefreshToken: refreshToken, User: u.Display(true)})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken exchanges a valid, unexpired refresh token for a new
// access token without requiring the password again.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken, h.jwt.Secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}

	token, err := middleware.GenerateToken(claims.UserID, claims.Username, h.jwt.Secret, h.jwt.ExpiryHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
