package entity

import "time"

// Project is a tenant boundary: contributors, issues and (through issues) comments
// all hang off one project.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:128;uniqueIndex;not null" json:"title"`
	Description string    `gorm:"size:256;not null" json:"description"`
	Type        string    `gorm:"size:128;not null" json:"type"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Contributor enrolls a user in a project. At most one row per (user, project), and
// exactly one row per project carries PermissionCreator; both are enforced by unique
// indexes, the second one partial.
type Contributor struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_contributor_user_project,priority:1" json:"user_id"`
	User       User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ProjectID  uint       `gorm:"not null;uniqueIndex:idx_contributor_user_project,priority:2;uniqueIndex:idx_contributor_project_creator,where:permission = 'CREA'" json:"project_id"`
	Project    Project    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Permission Permission `gorm:"size:4;not null;default:CONT" json:"permission"`
	Role       Role       `gorm:"size:2;not null;default:PS" json:"role"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Contributor) IsCreator() bool {
	return c != nil && c.Permission == PermissionCreator
}
