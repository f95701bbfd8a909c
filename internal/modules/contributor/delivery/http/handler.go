package handler

import (
	"net/http"

	"anoa.com/softdesk/internal/middleware"
	"anoa.com/softdesk/internal/modules/contributor/dto"
	contributor "anoa.com/softdesk/internal/modules/contributor/service"
	"anoa.com/softdesk/pkg/response"
	"anoa.com/softdesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ContributorHandler struct {
	service contributor.ContributorService
}

func NewContributorHandler(service contributor.ContributorService) *ContributorHandler {
	return &ContributorHandler{service: service}
}

func (h *ContributorHandler) AddContributor(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.AuthorizeCreate(c.Request.Context(), scope); err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateContributorRequest
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

func (h *ContributorHandler) ListContributors(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	contributors, err := h.service.List(c.Request.Context(), scope)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, contributors)
}

func (h *ContributorHandler) GetContributor(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseID(c, "contributor_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ContributorHandler) RemoveContributor(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseID(c, "contributor_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), scope, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
