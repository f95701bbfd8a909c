package access

import (
	"context"
	"fmt"

	"anoa.com/softdesk/internal/entity"
)

// Scope is the per-request input every resource service receives: who is asking
// and which parent records the URL named. Zero ids mean "not part of this route".
type Scope struct {
	ActorID   uint
	ProjectID uint
	IssueID   uint
}

// MembershipFinder returns the actor's contributor row for a project, or nil when
// there is none.
type MembershipFinder interface {
	FindMembership(ctx context.Context, projectID, userID uint) (*entity.Contributor, error)
}

// Resolve loads the actor's membership for the scope's project.
func Resolve(ctx context.Context, finder MembershipFinder, scope Scope) (Subject, error) {
	subject := Subject{UserID: scope.ActorID, ProjectID: scope.ProjectID}
	if scope.ActorID == 0 || scope.ProjectID == 0 {
		return subject, nil
	}

	membership, err := finder.FindMembership(ctx, scope.ProjectID, scope.ActorID)
	if err != nil {
		return subject, fmt.Errorf("resolve membership: %w", err)
	}
	subject.Membership = membership
	return subject, nil
}
