package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trosc-backend/internal/config"
	"trosc-backend/internal/logger"
	"trosc-backend/internal/middleware"
	"trosc-backend/internal/user/model"
	"trosc-backend/internal/user/service"
	appErrors "trosc-backend/pkg/errors"
	"trosc-backend/pkg/utils"
)

const jwtCookieName = "jwt"

type UserHandler struct {
	service *service.UserService
	config  *config.Config
}

func NewHandler(service *service.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{service: service, config: cfg}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
		auth.GET("/logout", h.Logout)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.PATCH("/reset-password/:token", h.ResetPassword)
	}
}

func (h *UserHandler) SignUp(c *gin.Context) {
	var request model.SignupRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)
	request.Name = utils.SanitizeString(request.Name)
	request.Photo = utils.SanitizeString(request.Photo)

	authResponse, err := h.service.SignUp(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setTokenCookie(c, authResponse.Token)
	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", authResponse)
}

func (h *UserHandler) Login(c *gin.Context) {
	var request model.LoginRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)

	authResponse, err := h.service.Login(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setTokenCookie(c, authResponse.Token)
	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

// Logout is stateless: tokens stay valid until expiry, only the cookie is
// replaced with a short-lived dummy value.
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(jwtCookieName, "loggedout", 10, "/", "", h.secureCookies(), true)
	utils.SuccessResponse(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var request model.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)

	if err := h.service.ForgotPassword(c.Request.Context(), &request); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token sent to email", nil)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var request model.ResetPasswordRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	request.Token = c.Param("token")

	authResponse, err := h.service.ResetPassword(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setTokenCookie(c, authResponse.Token)
	utils.SuccessResponse(c, http.StatusOK, "Password reset successfully", authResponse)
}

func (h *UserHandler) setTokenCookie(c *gin.Context, token string) {
	maxAge := h.config.JWT.CookieExpiresDays * 24 * 60 * 60
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(jwtCookieName, token, maxAge, "/", "", h.secureCookies(), true)
}

func (h *UserHandler) secureCookies() bool {
	return h.config.Server.Environment == "production"
}

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrUserAlreadyExists):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrTokenInvalid),
		errors.Is(err, appErrors.ErrTokenExpired),
		errors.Is(err, appErrors.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appErrors.ErrUserInactive),
		errors.Is(err, appErrors.ErrInsufficientPermissions):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErrors.ErrUserNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErrors.ErrResetTokenInvalid):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErrors.ErrEmailDelivery):
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		requestID := middleware.GetRequestID(c)
		logger.Error("Internal server error",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
