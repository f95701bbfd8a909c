package middleware

import (
	"anoa.com/softdesk/internal/access"
	"anoa.com/softdesk/pkg/response"
	"github.com/gin-gonic/gin"
)

// ParseScope builds the access scope of a request from the authenticated user and
// the project_id and issue_id path parameters the route declares.
func ParseScope(c *gin.Context) (access.Scope, error) {
	var scope access.Scope
	var err error

	if scope.ActorID, err = response.GetUserID(c); err != nil {
		return scope, err
	}
	if _, ok := c.Params.Get("project_id"); ok {
		if scope.ProjectID, err = response.ParseID(c, "project_id"); err != nil {
			return scope, err
		}
	}
	if _, ok := c.Params.Get("issue_id"); ok {
		if scope.IssueID, err = response.ParseID(c, "issue_id"); err != nil {
			return scope, err
		}
	}
	return scope, nil
}
