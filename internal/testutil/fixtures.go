package testutil

import (
	"testing"

	"anoa.com/softdesk/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func CreateUser(t testing.TB, db *gorm.DB, name string) *entity.User {
	t.Helper()
	user := &entity.User{
		Username:     name,
		Email:        name + "@example.com",
		FirstName:    name,
		LastName:     "Tester",
		PasswordHash: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

// CreateProject stores a project with owner as its creator contributor.
func CreateProject(t testing.TB, db *gorm.DB, title string, owner *entity.User) *entity.Project {
	t.Helper()
	project := &entity.Project{Title: title, Description: "tracker for " + title, Type: "back-end"}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("create project %s: %v", title, err)
	}
	Enroll(t, db, project, owner, entity.PermissionCreator)
	return project
}

func Enroll(t testing.TB, db *gorm.DB, project *entity.Project, user *entity.User, permission entity.Permission) *entity.Contributor {
	t.Helper()
	c := &entity.Contributor{
		UserID:     user.ID,
		ProjectID:  project.ID,
		Permission: permission,
		Role:       entity.RoleProjectManager,
	}
	if err := db.Omit(clause.Associations).Create(c).Error; err != nil {
		t.Fatalf("enroll user %d: %v", user.ID, err)
	}
	return c
}

func CreateIssue(t testing.TB, db *gorm.DB, project *entity.Project, title string, author *entity.User) *entity.Issue {
	t.Helper()
	issue := &entity.Issue{
		Title:       title,
		Description: "desc",
		ProjectID:   project.ID,
		AuthorID:    entity.UintPtr(author.ID),
		AssigneeID:  entity.UintPtr(author.ID),
	}
	if err := db.Omit(clause.Associations).Create(issue).Error; err != nil {
		t.Fatalf("create issue %s: %v", title, err)
	}
	return issue
}

func CreateComment(t testing.TB, db *gorm.DB, issue *entity.Issue, author *entity.User) *entity.Comment {
	t.Helper()
	comment := &entity.Comment{
		Description: "me too",
		IssueID:     entity.UintPtr(issue.ID),
		AuthorID:    entity.UintPtr(author.ID),
	}
	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}
