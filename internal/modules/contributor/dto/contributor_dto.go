package dto

import "anoa.com/softdesk/internal/entity"

// CreateContributorRequest enrolls User in the project from the path. Permission
// may only name the contributor level; the creator row is made with the project.
type CreateContributorRequest struct {
	User       uint              `json:"user" binding:"required"`
	Role       entity.Role       `json:"role" binding:"omitempty,oneof=PM PS"`
	Permission entity.Permission `json:"permission" binding:"omitempty,oneof=CREA CONT"`
}
