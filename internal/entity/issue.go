package entity

import "time"

type Issue struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:128;uniqueIndex;not null" json:"title"`
	Description string    `gorm:"size:256;not null" json:"description"`
	Tag         Tag       `gorm:"size:3;not null;default:BUG" json:"tag"`
	Priority    Priority  `gorm:"size:3;not null;default:LOW" json:"priority"`
	Status      Status    `gorm:"size:3;not null;default:TOD" json:"status"`
	ProjectID   uint      `gorm:"not null;index" json:"project_id"`
	Project     Project   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID    *uint     `gorm:"index" json:"author_id"`
	Author      *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	AssigneeID  *uint     `gorm:"index" json:"assignee_id"`
	Assignee    *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedTime time.Time `gorm:"autoCreateTime" json:"created_time"`
}

// Comment keeps a weak link to its issue: deleting the issue nulls IssueID and leaves
// the comment unreachable through the API instead of removing it.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"size:256;not null" json:"description"`
	IssueID     *uint     `gorm:"index" json:"issue_id"`
	Issue       *Issue    `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	AuthorID    *uint     `gorm:"index" json:"author_id"`
	Author      *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedTime time.Time `gorm:"autoCreateTime" json:"created_time"`
}

// TimeLayout renders issue and comment timestamps as H:M:S d-m-Y.
const TimeLayout = "15:04:05 02-01-2006"

func UintPtr(v uint) *uint {
	return &v
}

// SameID reports whether the optional reference points at id.
func SameID(ref *uint, id uint) bool {
	return ref != nil && id != 0 && *ref == id
}
