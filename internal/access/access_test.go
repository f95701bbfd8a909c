package access

import (
	"context"
	"errors"
	"testing"

	"anoa.com/softdesk/internal/entity"
)

const (
	projectID = 10
	ownerID   = 1
	staffID   = 2
	outsideID = 3
)

func creatorRow() *entity.Contributor {
	return &entity.Contributor{ID: 100, UserID: ownerID, ProjectID: projectID, Permission: entity.PermissionCreator, Role: entity.RoleProjectManager}
}

func staffRow() *entity.Contributor {
	return &entity.Contributor{ID: 101, UserID: staffID, ProjectID: projectID, Permission: entity.PermissionContributor, Role: entity.RoleProjectStaff}
}

func owner() Subject {
	return Subject{UserID: ownerID, ProjectID: projectID, Membership: creatorRow()}
}

func staff() Subject {
	return Subject{UserID: staffID, ProjectID: projectID, Membership: staffRow()}
}

func outsider() Subject {
	return Subject{UserID: outsideID, ProjectID: projectID}
}

func anonymous() Subject {
	return Subject{ProjectID: projectID}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		res     Resource
		act     Action
		want    bool
	}{
		{"anyone authenticated lists projects", Subject{UserID: outsideID}, ResourceProject, ActionList, true},
		{"anyone authenticated creates projects", Subject{UserID: outsideID}, ResourceProject, ActionCreate, true},
		{"anonymous cannot create projects", Subject{}, ResourceProject, ActionCreate, false},
		{"staff lists contributors", staff(), ResourceContributor, ActionList, true},
		{"outsider cannot list contributors", outsider(), ResourceContributor, ActionList, false},
		{"creator enrolls contributors", owner(), ResourceContributor, ActionCreate, true},
		{"staff cannot enroll contributors", staff(), ResourceContributor, ActionCreate, false},
		{"outsider cannot enroll contributors", outsider(), ResourceContributor, ActionCreate, false},
		{"staff files issues", staff(), ResourceIssue, ActionCreate, true},
		{"outsider cannot file issues", outsider(), ResourceIssue, ActionCreate, false},
		{"anonymous cannot list issues", anonymous(), ResourceIssue, ActionList, false},
		{"staff comments", staff(), ResourceComment, ActionCreate, true},
		{"outsider cannot list comments", outsider(), ResourceComment, ActionList, false},
		{"no collection rule for delete", owner(), ResourceIssue, ActionDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.subject, tt.res, tt.act); got != tt.want {
				t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.res, tt.act, got, tt.want)
			}
		})
	}
}

func TestHasObjectPermissionProject(t *testing.T) {
	obj := ProjectObject(&entity.Project{ID: projectID})

	check := func(s Subject, a Action, want bool) {
		t.Helper()
		if got := HasObjectPermission(s, ResourceProject, a, obj); got != want {
			t.Errorf("user %d %s project = %v, want %v", s.UserID, a, got, want)
		}
	}

	check(owner(), ActionRetrieve, true)
	check(owner(), ActionUpdate, true)
	check(owner(), ActionDelete, true)
	check(staff(), ActionRetrieve, true)
	check(staff(), ActionUpdate, false)
	check(staff(), ActionDelete, false)
	check(outsider(), ActionRetrieve, false)
	check(outsider(), ActionDelete, false)
	check(anonymous(), ActionRetrieve, false)
}

func TestHasObjectPermissionContributor(t *testing.T) {
	creator := ContributorObject(creatorRow())
	plain := ContributorObject(staffRow())

	if !HasObjectPermission(owner(), ResourceContributor, ActionDelete, plain) {
		t.Error("creator should remove a plain contributor")
	}
	if HasObjectPermission(owner(), ResourceContributor, ActionDelete, creator) {
		t.Error("creator row must never be deletable, even by its owner")
	}
	if HasObjectPermission(staff(), ResourceContributor, ActionDelete, creator) {
		t.Error("creator row must never be deletable by staff")
	}
	if HasObjectPermission(staff(), ResourceContributor, ActionDelete, plain) {
		t.Error("staff cannot remove contributors")
	}
	if !HasObjectPermission(staff(), ResourceContributor, ActionRetrieve, creator) {
		t.Error("staff can read the creator row")
	}
	if HasObjectPermission(outsider(), ResourceContributor, ActionRetrieve, plain) {
		t.Error("outsider cannot read contributor rows")
	}
}

func TestHasObjectPermissionIssue(t *testing.T) {
	issue := &entity.Issue{ID: 5, ProjectID: projectID, AuthorID: entity.UintPtr(staffID), AssigneeID: entity.UintPtr(ownerID)}
	obj := IssueObject(issue)

	if !HasObjectPermission(staff(), ResourceIssue, ActionUpdate, obj) {
		t.Error("author should update")
	}
	if !HasObjectPermission(owner(), ResourceIssue, ActionDelete, obj) {
		t.Error("assignee should delete")
	}

	unassigned := IssueObject(&entity.Issue{ID: 6, ProjectID: projectID, AuthorID: entity.UintPtr(staffID)})
	if HasObjectPermission(owner(), ResourceIssue, ActionUpdate, unassigned) {
		t.Error("project creator is neither author nor assignee of this issue")
	}
	if !HasObjectPermission(owner(), ResourceIssue, ActionRetrieve, unassigned) {
		t.Error("any contributor reads issues")
	}

	orphan := IssueObject(&entity.Issue{ID: 7, ProjectID: projectID})
	if HasObjectPermission(staff(), ResourceIssue, ActionUpdate, orphan) {
		t.Error("issue without author or assignee is not writable")
	}
}

func TestHasObjectPermissionComment(t *testing.T) {
	comment := &entity.Comment{ID: 9, IssueID: entity.UintPtr(5), AuthorID: entity.UintPtr(staffID)}
	obj := CommentObject(comment, projectID)

	if !HasObjectPermission(staff(), ResourceComment, ActionUpdate, obj) {
		t.Error("author should update own comment")
	}
	if HasObjectPermission(owner(), ResourceComment, ActionDelete, obj) {
		t.Error("project creator cannot delete someone else's comment")
	}
	if !HasObjectPermission(owner(), ResourceComment, ActionList, obj) {
		t.Error("any contributor lists comments")
	}
}

func TestObjectChecksFailClosedWithoutMembership(t *testing.T) {
	// Ownership alone is not enough: the author lost their contributor row.
	issue := IssueObject(&entity.Issue{ID: 5, ProjectID: projectID, AuthorID: entity.UintPtr(outsideID)})
	for _, a := range []Action{ActionRetrieve, ActionUpdate, ActionDelete} {
		if HasObjectPermission(outsider(), ResourceIssue, a, issue) {
			t.Errorf("%s allowed without membership", a)
		}
	}
}

func TestObjectChecksRejectForeignProject(t *testing.T) {
	foreign := IssueObject(&entity.Issue{ID: 5, ProjectID: projectID + 1, AuthorID: entity.UintPtr(staffID)})
	if HasObjectPermission(staff(), ResourceIssue, ActionRetrieve, foreign) {
		t.Error("membership in one project must not grant access to another")
	}

	// A membership row for another project or user is ignored.
	mismatched := Subject{UserID: staffID, ProjectID: projectID, Membership: &entity.Contributor{UserID: staffID, ProjectID: projectID + 1}}
	if HasObjectPermission(mismatched, ResourceProject, ActionRetrieve, ProjectObject(&entity.Project{ID: projectID})) {
		t.Error("membership for a different project accepted")
	}
}

type fakeFinder struct {
	rows  map[[2]uint]*entity.Contributor
	err   error
	calls int
}

func (f *fakeFinder) FindMembership(_ context.Context, projectID, userID uint) (*entity.Contributor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[[2]uint{projectID, userID}], nil
}

func TestResolve(t *testing.T) {
	finder := &fakeFinder{rows: map[[2]uint]*entity.Contributor{{projectID, staffID}: staffRow()}}
	ctx := context.Background()

	s, err := Resolve(ctx, finder, Scope{ActorID: staffID, ProjectID: projectID})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.Membership == nil || s.Membership.ID != 101 {
		t.Errorf("Membership = %+v", s.Membership)
	}

	s, err = Resolve(ctx, finder, Scope{ActorID: outsideID, ProjectID: projectID})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.Membership != nil {
		t.Error("outsider resolved to a membership")
	}

	calls := finder.calls
	if _, err := Resolve(ctx, finder, Scope{ActorID: staffID}); err != nil {
		t.Fatalf("Resolve without project: %v", err)
	}
	if finder.calls != calls {
		t.Error("Resolve queried the store without a project scope")
	}

	finder.err = errors.New("db down")
	if _, err := Resolve(ctx, finder, Scope{ActorID: staffID, ProjectID: projectID}); err == nil {
		t.Error("expected store error to propagate")
	}
}
