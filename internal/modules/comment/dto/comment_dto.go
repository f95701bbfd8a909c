package dto

import (
	commonDto "anoa.com/softdesk/internal/dto"
	"anoa.com/softdesk/internal/entity"
)

// CommentRequest is the body of create, PUT and PATCH alike: description is the
// only writable field.
type CommentRequest struct {
	Description string `json:"description" binding:"required,max=256"`
}

type CommentResponse struct {
	ID          uint                   `json:"id"`
	Description string                 `json:"description"`
	Issue       *uint                  `json:"issue"`
	Author      *commonDto.UserSummary `json:"author"`
	CreatedTime commonDto.Timestamp    `json:"created_time"`
}

func NewCommentResponse(c *entity.Comment) CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		Description: c.Description,
		Issue:       c.IssueID,
		Author:      commonDto.NewUserSummary(c.Author),
		CreatedTime: commonDto.Timestamp{Time: c.CreatedTime},
	}
}
