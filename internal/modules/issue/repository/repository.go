package repository

import (
	"context"

	"anoa.com/softdesk/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IssueRepository interface {
	Create(ctx context.Context, issue *entity.Issue) error
	// FindByID only finds issues of projectID, so an issue id paired with the wrong
	// project is indistinguishable from a missing one.
	FindByID(ctx context.Context, projectID, id uint) (*entity.Issue, error)
	FindByIDs(ctx context.Context, projectID uint, ids []uint) ([]*entity.Issue, error)
	ListByProject(ctx context.Context, projectID uint) ([]*entity.Issue, error)
	Update(ctx context.Context, issue *entity.Issue) error
	// Delete removes the issue and detaches its comments.
	Delete(ctx context.Context, id uint) error
}

type issueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) withUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Assignee")
}

func (r *issueRepository) Create(ctx context.Context, issue *entity.Issue) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(issue).Error
}

func (r *issueRepository) FindByID(ctx context.Context, projectID, id uint) (*entity.Issue, error) {
	var issue entity.Issue
	if err := r.withUsers(ctx).
		Where("project_id = ? AND id = ?", projectID, id).
		First(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) FindByIDs(ctx context.Context, projectID uint, ids []uint) ([]*entity.Issue, error) {
	var issues []*entity.Issue
	if len(ids) == 0 {
		return issues, nil
	}
	err := r.withUsers(ctx).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Find(&issues).Error
	return issues, err
}

func (r *issueRepository) ListByProject(ctx context.Context, projectID uint) ([]*entity.Issue, error) {
	var issues []*entity.Issue
	err := r.withUsers(ctx).
		Where("project_id = ?", projectID).
		Order("created_time ASC, id ASC").
		Find(&issues).Error
	return issues, err
}

func (r *issueRepository) Update(ctx context.Context, issue *entity.Issue) error {
	return r.db.WithContext(ctx).Model(issue).
		Select("title", "description", "tag", "priority", "status", "assignee_id").
		Updates(issue).Error
}

func (r *issueRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Comment{}).Where("issue_id = ?", id).
			Update("issue_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Issue{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
