package dto

import (
	commonDto "anoa.com/softdesk/internal/dto"
	"anoa.com/softdesk/internal/entity"
)

type CreateIssueRequest struct {
	Title       string          `json:"title" binding:"required,max=128"`
	Description string          `json:"description" binding:"required,max=256"`
	Tag         entity.Tag      `json:"tag" binding:"omitempty,oneof=BUG IMP TSK"`
	Priority    entity.Priority `json:"priority" binding:"omitempty,oneof=LOW MED SUP"`
	Status      entity.Status   `json:"status" binding:"omitempty,oneof=TOD DOI DON"`
	Assignee    *uint           `json:"assignee"`
}

// UpdateIssueRequest replaces every writable field (PUT). A missing assignee
// unassigns the issue.
type UpdateIssueRequest struct {
	Title       string          `json:"title" binding:"required,max=128"`
	Description string          `json:"description" binding:"required,max=256"`
	Tag         entity.Tag      `json:"tag" binding:"required,oneof=BUG IMP TSK"`
	Priority    entity.Priority `json:"priority" binding:"required,oneof=LOW MED SUP"`
	Status      entity.Status   `json:"status" binding:"required,oneof=TOD DOI DON"`
	Assignee    *uint           `json:"assignee"`
}

func (r UpdateIssueRequest) Patch() PatchIssueRequest {
	return PatchIssueRequest{
		Title:       &r.Title,
		Description: &r.Description,
		Tag:         &r.Tag,
		Priority:    &r.Priority,
		Status:      &r.Status,
		Assignee:    r.Assignee,
		Unassign:    r.Assignee == nil,
	}
}

type PatchIssueRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=1,max=128"`
	Description *string          `json:"description" binding:"omitempty,min=1,max=256"`
	Tag         *entity.Tag      `json:"tag" binding:"omitempty,oneof=BUG IMP TSK"`
	Priority    *entity.Priority `json:"priority" binding:"omitempty,oneof=LOW MED SUP"`
	Status      *entity.Status   `json:"status" binding:"omitempty,oneof=TOD DOI DON"`
	Assignee    *uint            `json:"assignee"`
	Unassign    bool             `json:"-"`
}

type IssueResponse struct {
	ID          uint                   `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Tag         entity.Tag             `json:"tag"`
	Priority    entity.Priority        `json:"priority"`
	Status      entity.Status          `json:"status"`
	Project     uint                   `json:"project"`
	Author      *commonDto.UserSummary `json:"author"`
	Assignee    *commonDto.UserSummary `json:"assignee"`
	CreatedTime commonDto.Timestamp    `json:"created_time"`
}

func NewIssueResponse(i *entity.Issue) IssueResponse {
	return IssueResponse{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Tag:         i.Tag,
		Priority:    i.Priority,
		Status:      i.Status,
		Project:     i.ProjectID,
		Author:      commonDto.NewUserSummary(i.Author),
		Assignee:    commonDto.NewUserSummary(i.Assignee),
		CreatedTime: commonDto.Timestamp{Time: i.CreatedTime},
	}
}

type SearchIssueQuery struct {
	Q     string `form:"q" binding:"required,max=128"`
	Limit int64  `form:"limit" binding:"omitempty,min=1,max=50"`
}
