package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trosc-backend/internal/user/model"
	"trosc-backend/pkg/utils"
)

func (h *UserHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:user_id", h.GetUser)
		users.PATCH("/:user_id", h.UpdateUser)
		users.DELETE("/:user_id", h.DeleteUser)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var request model.AdminCreateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)
	request.Name = utils.SanitizeString(request.Name)

	user, err := h.service.CreateUser(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var request model.AdminUpdateUserRequest
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

	user, err := h.service.UpdateUser(c.Request.Context(), userID, &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func pathUserID(c *gin.Context) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("user_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user id")
		return primitive.NilObjectID, false
	}
	return oid, true
}
