package dto

import (
	"encoding/json"
	"time"

	"anoa.com/softdesk/internal/entity"
)

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func NewUserSummary(u *entity.User) *UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.DisplayName(),
	}
}

// ContributorResponse is shared by the contributor endpoints and the project detail
// view, which embeds the creator and member rows.
type ContributorResponse struct {
	ID         uint              `json:"id"`
	User       *UserSummary      `json:"user"`
	Project    uint              `json:"project"`
	Permission entity.Permission `json:"permission"`
	Role       entity.Role       `json:"role"`
}

func NewContributorResponse(c *entity.Contributor) ContributorResponse {
	return ContributorResponse{
		ID:         c.ID,
		User:       NewUserSummary(&c.User),
		Project:    c.ProjectID,
		Permission: c.Permission,
		Role:       c.Role,
	}
}

// Timestamp renders issue and comment times in the H:M:S d-m-Y layout and parses
// them back the same way.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(entity.TimeLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(entity.TimeLayout, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
