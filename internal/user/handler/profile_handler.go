package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trosc-backend/internal/middleware"
	"trosc-backend/internal/user/model"
	"trosc-backend/pkg/utils"
)

func (h *UserHandler) RegisterProfileRoutes(router *gin.RouterGroup) {
	me := router.Group("/me")
	{
		me.GET("", h.GetMe)
		me.PATCH("", h.UpdateMe)
		me.DELETE("", h.DeleteMe)
		me.PATCH("/password", h.ChangePassword)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", profile)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if request.Name != nil {
		sanitized := utils.SanitizeString(*request.Name)
		request.Name = &sanitized
	}
	if request.Email != nil {
		sanitized := utils.SanitizeEmail(*request.Email)
		request.Email = &sanitized
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), userID, &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile updated successfully", profile)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeactivateMe(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	authResponse, err := h.service.ChangePassword(c.Request.Context(), userID, &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setTokenCookie(c, authResponse.Token)
	utils.SuccessResponse(c, http.StatusOK, "Password updated successfully", authResponse)
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return primitive.NilObjectID, false
	}

	oid, ok := userID.(primitive.ObjectID)
	if !ok {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Invalid user identifier")
		return primitive.NilObjectID, false
	}
	return oid, true
}
