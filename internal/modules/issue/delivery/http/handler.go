package handler

import (
	"net/http"

	"anoa.com/softdesk/internal/middleware"
	"anoa.com/softdesk/internal/modules/issue/dto"
	issue "anoa.com/softdesk/internal/modules/issue/service"
	"anoa.com/softdesk/pkg/response"
	"anoa.com/softdesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type IssueHandler struct {
	service issue.IssueService
}

func NewIssueHandler(service issue.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

func (h *IssueHandler) CreateIssue(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.AuthorizeCreate(c.Request.Context(), scope); err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateIssueRequest
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

func (h *IssueHandler) ListIssues(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	issues, err := h.service.List(c.Request.Context(), scope)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

func (h *IssueHandler) SearchIssues(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.SearchIssueQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	issues, err := h.service.Search(c.Request.Context(), scope, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

func (h *IssueHandler) GetIssue(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.Get(c.Request.Context(), scope, scope.IssueID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), scope, scope.IssueID, req.Patch())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *IssueHandler) PatchIssue(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.PatchIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), scope, scope.IssueID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), scope, scope.IssueID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
