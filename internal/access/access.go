// Package access decides whether an actor may perform an action on a project-scoped
// resource. Decisions are pure functions of the actor's membership record and the
// ownership facts of the target; nothing here touches storage.
package access

import "anoa.com/softdesk/internal/entity"

type Resource int

const (
	ResourceProject Resource = iota + 1
	ResourceContributor
	ResourceIssue
	ResourceComment
)

func (r Resource) String() string {
	switch r {
	case ResourceProject:
		return "project"
	case ResourceContributor:
		return "contributor"
	case ResourceIssue:
		return "issue"
	case ResourceComment:
		return "comment"
	}
	return "unknown"
}

type Action int

const (
	ActionList Action = iota + 1
	ActionRetrieve
	ActionCreate
	ActionUpdate
	ActionDelete
)

// Safe actions only read.
func (a Action) Safe() bool {
	return a == ActionList || a == ActionRetrieve
}

func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionRetrieve:
		return "retrieve"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Subject is the actor as seen from one project. Membership is nil when the actor has
// no contributor row in that project.
type Subject struct {
	UserID     uint
	ProjectID  uint
	Membership *entity.Contributor
}

func (s Subject) authenticated() bool {
	return s.UserID != 0
}

// member reports whether the membership belongs to this actor and this project.
func (s Subject) member() bool {
	m := s.Membership
	return s.authenticated() && m != nil && m.UserID == s.UserID && m.ProjectID == s.ProjectID
}

func (s Subject) creator() bool {
	return s.member() && s.Membership.IsCreator()
}

// Object carries the ownership facts object-level rules look at.
type Object struct {
	ProjectID  uint
	AuthorID   *uint
	AssigneeID *uint
	Permission entity.Permission
}

func ProjectObject(p *entity.Project) Object {
	return Object{ProjectID: p.ID}
}

func ContributorObject(c *entity.Contributor) Object {
	return Object{ProjectID: c.ProjectID, Permission: c.Permission}
}

func IssueObject(i *entity.Issue) Object {
	return Object{ProjectID: i.ProjectID, AuthorID: i.AuthorID, AssigneeID: i.AssigneeID}
}

// CommentObject needs the project of the comment's issue, which the comment row
// itself does not carry.
func CommentObject(c *entity.Comment, projectID uint) Object {
	return Object{ProjectID: projectID, AuthorID: c.AuthorID}
}

// HasPermission is the collection-level check used for list and create, before any
// target instance exists.
func HasPermission(s Subject, r Resource, a Action) bool {
	req, ok := collectionRules.lookup(r, a)
	if !ok {
		return false
	}
	return satisfies(s, req, Object{ProjectID: s.ProjectID})
}

// HasObjectPermission is the object-level check for one target instance. It
// re-verifies membership itself, so a missing contributor row denies even if the
// caller skipped HasPermission.
func HasObjectPermission(s Subject, r Resource, a Action, obj Object) bool {
	if obj.ProjectID == 0 || obj.ProjectID != s.ProjectID {
		return false
	}
	if !s.member() {
		return false
	}
	// The owner row can be read but never rewritten or removed.
	if r == ResourceContributor && !a.Safe() && obj.Permission == entity.PermissionCreator {
		return false
	}
	req, ok := objectRules.lookup(r, a)
	if !ok {
		return false
	}
	return satisfies(s, req, obj)
}

func satisfies(s Subject, req Requirement, obj Object) bool {
	switch req {
	case RequireAuthenticated:
		return s.authenticated()
	case RequireContributor:
		return s.member()
	case RequireCreator:
		return s.creator()
	case RequireAuthor:
		return s.member() && entity.SameID(obj.AuthorID, s.UserID)
	case RequireAuthorOrAssignee:
		return s.member() && (entity.SameID(obj.AuthorID, s.UserID) || entity.SameID(obj.AssigneeID, s.UserID))
	}
	return false
}
