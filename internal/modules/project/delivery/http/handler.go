package handler

import (
	"net/http"

	"anoa.com/softdesk/internal/middleware"
	"anoa.com/softdesk/internal/modules/project/dto"
	project "anoa.com/softdesk/internal/modules/project/service"
	"anoa.com/softdesk/pkg/response"
	"anoa.com/softdesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	service project.ProjectService
}

func NewProjectHandler(service project.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	projects, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.Get(c.Request.Context(), scope)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), scope, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) PatchProject(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.PatchProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	resp, err := h.service.Patch(c.Request.Context(), scope, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), scope); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
