package handler

import (
	"net/http"
	"time"

	"anoa.com/softdesk/internal/modules/user/dto"
	user "anoa.com/softdesk/internal/modules/user/service"
	"anoa.com/softdesk/pkg/response"
	"anoa.com/softdesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service user.AuthService
}

func NewUserHandler(service user.AuthService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Signup(c *gin.Context) {
	var input dto.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	created, err := h.service.Signup(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Logout(c *gin.Context) {
	tokenID := c.GetString(response.ContextTokenID)
	expiresAt, _ := c.Get(response.ContextTokenExp)
	exp, _ := expiresAt.(time.Time)

	if err := h.service.Logout(c.Request.Context(), tokenID, exp); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) LogoutAll(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.LogoutAll(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	me, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, me)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
