package handler

import (
	"net/http"

	"anoa.com/softdesk/internal/access"
	"anoa.com/softdesk/internal/middleware"
	"anoa.com/softdesk/internal/modules/comment/dto"
	comment "anoa.com/softdesk/internal/modules/comment/service"
	"anoa.com/softdesk/pkg/response"
	"anoa.com/softdesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.AuthorizeCreate(c.Request.Context(), scope); err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), scope, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	comments, err := h.service.List(c.Request.Context(), scope)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	scope, id, ok := h.target(c)
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateComment serves both PUT and PATCH; description is the only field.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	scope, id, ok := h.target(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), scope, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	scope, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), scope, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) target(c *gin.Context) (access.Scope, uint, bool) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return scope, 0, false
	}
	id, err := response.ParseID(c, "comment_id")
	if err != nil {
		response.ResponseError(c, err)
		return scope, 0, false
	}
	return scope, id, true
}
