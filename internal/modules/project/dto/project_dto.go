package dto

import (
	commonDto "anoa.com/softdesk/internal/dto"
	"anoa.com/softdesk/internal/entity"
)

// CreateProjectRequest is also the full replacement body for PUT.
type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,max=128"`
	Description string `json:"description" binding:"required,max=256"`
	Type        string `json:"type" binding:"required,max=128"`
}

type PatchProjectRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=128"`
	Description *string `json:"description" binding:"omitempty,min=1,max=256"`
	Type        *string `json:"type" binding:"omitempty,min=1,max=128"`
}

func (r PatchProjectRequest) Apply(p *entity.Project) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Type != nil {
		p.Type = *r.Type
	}
}

type ProjectResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type ProjectDetailResponse struct {
	ProjectResponse
	Author  *commonDto.ContributorResponse  `json:"author"`
	Members []commonDto.ContributorResponse `json:"members"`
}

func NewProjectResponse(p *entity.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Type:        p.Type,
	}
}
