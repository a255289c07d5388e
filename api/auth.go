package api

import (
	"net/http"

	"github.com/Domenick1991/skybooking/internal/middleware"
	"github.com/Domenick1991/skybooking/internal/service/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	service auth.AuthUseCase
	logger  *logrus.Logger
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func NewAuthHandler(service auth.AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) Register(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.POST("/register", h.register)
	router.POST("/resend-verification", h.resendVerification)
	router.GET("/verify", h.verify)
	router.POST("/login", h.login)
	router.GET("/user", requireAuth, h.currentUser)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.Register(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err, "Internal Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent. Please verify to complete signup."})
}

func (h *AuthHandler) resendVerification(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err, "Failed to send verification email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email resent. Please check your inbox."})
}

func (h *AuthHandler) verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token missing"})
		return
	}

	if _, err := h.service.VerifyEmail(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, err, "Email verification failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified and user created successfully."})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		User:  userResponse{ID: result.User.ID, Name: result.User.Name, Email: result.User.Email},
		Token: result.Token,
	})
}

func (h *AuthHandler) currentUser(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, userResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}
