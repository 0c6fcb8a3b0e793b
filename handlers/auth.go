package handlers

import (
	"errors"
	"net/http"
	"strings"

	"delliapp/auth"
	"delliapp/events"
	"delliapp/middleware"
	"delliapp/models"
	"delliapp/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role"`
	Phone    string          `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type OTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// selfServiceRoles may be chosen at sign-up; staff and admins are provisioned.
var selfServiceRoles = map[models.UserRole]bool{
	models.RoleCustomer:        true,
	models.RoleRestaurantOwner: true,
}

func (h *Handler) session(c *gin.Context, status int, message string, p *models.Profile) {
	token, exp, err := h.Tokens.Issue(p)
	if err != nil {
		h.Log.Error("issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(status, gin.H{
		"message":    message,
		"token":      token,
		"expires_at": exp,
		"user": gin.H{
			"id":    p.ID,
			"name":  p.Name,
			"email": p.Email,
			"role":  p.Role,
		},
	})
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	if !selfServiceRoles[req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: customer or restaurant_owner"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Profiles.ByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.storeError(c, err, "user")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	user := models.Profile{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Phone:        req.Phone,
	}
	if err := h.Profiles.Create(ctx, &user); err != nil {
		h.storeError(c, err, "user")
		return
	}
	h.session(c, http.StatusCreated, "Account created successfully", &user)
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Profiles.ByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	h.session(c, http.StatusOK, "Login successful", user)
}

// SendOTP issues a one-time sign-in code. The code leaves the API only through the
// auth.otp event consumed by the mailer.
func (h *Handler) SendOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code, err := h.OTP.Issue(c.Request.Context(), email)
	if errors.Is(err, auth.ErrRateLimited) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.Log.Error("issue otp", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		return
	}
	h.publish(c.Request.Context(), events.AuthOTP, "", gin.H{"email": email, "code": code})
	c.JSON(http.StatusAccepted, gin.H{"message": "Code sent"})
}

// VerifyOTP signs the user in, creating a customer profile on first use.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.OTP.Verify(ctx, req.Email, req.Code); err != nil {
		if errors.Is(err, auth.ErrInvalidOTP) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.Log.Error("verify otp", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		return
	}

	user, err := h.Profiles.ByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		user = &models.Profile{Name: strings.SplitN(email, "@", 2)[0], Email: email, Role: models.RoleCustomer}
		err = h.Profiles.Create(ctx, user)
	}
	if err != nil {
		h.storeError(c, err, "user")
		return
	}
	h.session(c, http.StatusOK, "Login successful", user)
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Profiles.ByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.storeError(c, err, "user")
		return
	}
	resp := gin.H{"user": user}
	if teamID := middleware.CurrentTeamID(c); teamID != "" {
		role, err := store.Members(h.scope(c)).RoleOf(c.Request.Context(), user.ID)
		if err == nil && role != "" {
			resp["member_role"] = role
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	user, err := h.Profiles.Update(c.Request.Context(), middleware.GetUserID(c), fields)
	if err != nil {
		h.storeError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}
