package controllers

import (
	"net/http"
	"time"

	"hotel-booking-api/config"
	"hotel-booking-api/middleware"
	"hotel-booking-api/services"
	"hotel-booking-api/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{Users: users}
}

type registerPayload struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfilePayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func tokenDuration() time.Duration {
	hours := config.AppConfig.JWTExpiresHours
	if hours <= 0 {
		hours = 168
	}
	return time.Duration(hours) * time.Hour
}

// Register handles POST /api/auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := ac.Users.Register(services.RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Phone:    payload.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, tokenDuration())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccessMessage(c, http.StatusCreated, "User registered successfully", gin.H{
		"user":  user,
		"token": token,
	})
}

// Login handles POST /api/auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := ac.Users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if services.IsKind(err, services.KindForbidden) {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, tokenDuration())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccessMessage(c, http.StatusOK, "Login successful", gin.H{
		"user":  user,
		"token": token,
	})
}

// Profile handles GET /api/auth/profile.
func (ac *AuthController) Profile(c *gin.Context) {
	utils.JSONSuccess(c, http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

// UpdateProfile handles PUT /api/auth/profile.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var payload updateProfilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	updated, err := ac.Users.UpdateProfile(user.ID, payload.Name, payload.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccessMessage(c, http.StatusOK, "Profile updated successfully", gin.H{"user": updated})
}

// ChangePassword handles PUT /api/auth/change-password.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var payload changePasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	if err := ac.Users.ChangePassword(user.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccessMessage(c, http.StatusOK, "Password changed successfully", nil)
}
