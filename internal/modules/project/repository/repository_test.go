package repository_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/softdesk/internal/entity"
	"anoa.com/softdesk/internal/modules/project/repository"
	"anoa.com/softdesk/internal/testutil"
	"gorm.io/gorm"
)

func TestCreateWithOwner(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := repository.NewProjectRepository(db)
	alice := testutil.CreateUser(t, db, "alice")

	t.Run("stores project and creator", func(t *testing.T) {
		project := &entity.Project{Title: "Alpha", Description: "d", Type: "back-end"}
		owner := &entity.Contributor{UserID: alice.ID, Permission: entity.PermissionCreator, Role: entity.RoleProjectManager}
		if err := repo.CreateWithOwner(ctx, project, owner); err != nil {
			t.Fatalf("CreateWithOwner() error = %v", err)
		}
		if owner.ProjectID != project.ID || owner.ID == 0 {
			t.Errorf("owner = %+v, project id %d", owner, project.ID)
		}
	})

	t.Run("unknown owner leaves no project behind", func(t *testing.T) {
		project := &entity.Project{Title: "Orphan", Description: "d", Type: "iOS"}
		owner := &entity.Contributor{UserID: 9999, Permission: entity.PermissionCreator, Role: entity.RoleProjectManager}
		if err := repo.CreateWithOwner(ctx, project, owner); !errors.Is(err, gorm.ErrForeignKeyViolated) {
			t.Fatalf("CreateWithOwner() error = %v, want foreign key violation", err)
		}

		var count int64
		if err := db.Model(&entity.Project{}).Where("title = ?", "Orphan").Count(&count).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 0 {
			t.Errorf("project rows = %d, want 0", count)
		}
	})

	t.Run("duplicate title", func(t *testing.T) {
		project := &entity.Project{Title: "Alpha", Description: "again", Type: "back-end"}
		owner := &entity.Contributor{UserID: alice.ID, Permission: entity.PermissionCreator, Role: entity.RoleProjectManager}
		if err := repo.CreateWithOwner(ctx, project, owner); !errors.Is(err, gorm.ErrDuplicatedKey) {
			t.Fatalf("CreateWithOwner() error = %v, want duplicated key", err)
		}
	})
}

func TestFindByMember(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := repository.NewProjectRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	alpha := testutil.CreateProject(t, db, "Alpha", alice)
	beta := testutil.CreateProject(t, db, "Beta", bob)
	testutil.Enroll(t, db, beta, alice, entity.PermissionContributor)
	testutil.CreateProject(t, db, "Gamma", bob)

	projects, err := repo.FindByMember(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FindByMember() error = %v", err)
	}
	if len(projects) != 2 || projects[0].ID != alpha.ID || projects[1].ID != beta.ID {
		t.Errorf("FindByMember() = %+v, want Alpha and Beta", projects)
	}
}

func TestProjectUpdate(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := repository.NewProjectRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	alpha := testutil.CreateProject(t, db, "Alpha", alice)
	beta := testutil.CreateProject(t, db, "Beta", alice)

	alpha.Description = "renamed"
	alpha.Type = "Android"
	if err := repo.Update(ctx, alpha); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := repo.FindByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Description != "renamed" || got.Type != "Android" {
		t.Errorf("FindByID() = %+v", got)
	}

	beta.Title = "Alpha"
	if err := repo.Update(ctx, beta); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Update() to taken title error = %v, want duplicated key", err)
	}
}

func TestProjectDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := repository.NewProjectRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	alpha := testutil.CreateProject(t, db, "Alpha", alice)
	beta := testutil.CreateProject(t, db, "Beta", alice)
	testutil.Enroll(t, db, alpha, bob, entity.PermissionContributor)
	issue := testutil.CreateIssue(t, db, alpha, "Bug1", bob)
	kept := testutil.CreateIssue(t, db, beta, "Bug2", alice)
	comment := testutil.CreateComment(t, db, issue, bob)

	if err := repo.Delete(ctx, alpha.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.FindByID(ctx, alpha.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("FindByID() after delete error = %v", err)
	}

	var contributors, issues int64
	db.Model(&entity.Contributor{}).Where("project_id = ?", alpha.ID).Count(&contributors)
	db.Model(&entity.Issue{}).Where("project_id = ?", alpha.ID).Count(&issues)
	if contributors != 0 || issues != 0 {
		t.Errorf("left behind %d contributors and %d issues", contributors, issues)
	}

	var orphan entity.Comment
	if err := db.First(&orphan, comment.ID).Error; err != nil {
		t.Fatalf("comment removed: %v", err)
	}
	if orphan.IssueID != nil {
		t.Errorf("comment issue = %d, want detached", *orphan.IssueID)
	}

	if err := db.First(&entity.Issue{}, kept.ID).Error; err != nil {
		t.Errorf("issue of other project removed: %v", err)
	}

	if err := repo.Delete(ctx, alpha.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}
