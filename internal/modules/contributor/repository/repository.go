package repository

import (
	"context"
	"errors"

	"anoa.com/softdesk/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContributorRepository interface {
	Create(ctx context.Context, contributor *entity.Contributor) error
	FindByID(ctx context.Context, projectID, id uint) (*entity.Contributor, error)
	// FindMembership returns the user's row in the project, or nil when the user is
	// not enrolled.
	FindMembership(ctx context.Context, projectID, userID uint) (*entity.Contributor, error)
	FindCreator(ctx context.Context, projectID uint) (*entity.Contributor, error)
	ListByProject(ctx context.Context, projectID uint) ([]*entity.Contributor, error)
	ListByUser(ctx context.Context, userID uint) ([]*entity.Contributor, error)
	// Delete never removes the creator row; it reports gorm.ErrRecordNotFound instead.
	Delete(ctx context.Context, id uint) error
}

type contributorRepository struct {
	db *gorm.DB
}

func NewContributorRepository(db *gorm.DB) ContributorRepository {
	return &contributorRepository{db: db}
}

func (r *contributorRepository) Create(ctx context.Context, contributor *entity.Contributor) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(contributor).Error
}

func (r *contributorRepository) FindByID(ctx context.Context, projectID, id uint) (*entity.Contributor, error) {
	var contributor entity.Contributor
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ? AND id = ?", projectID, id).
		First(&contributor).Error; err != nil {
		return nil, err
	}
	return &contributor, nil
}

func (r *contributorRepository) FindMembership(ctx context.Context, projectID, userID uint) (*entity.Contributor, error) {
	var contributor entity.Contributor
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Take(&contributor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contributor, nil
}

func (r *contributorRepository) FindCreator(ctx context.Context, projectID uint) (*entity.Contributor, error) {
	var contributor entity.Contributor
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ? AND permission = ?", projectID, entity.PermissionCreator).
		First(&contributor).Error; err != nil {
		return nil, err
	}
	return &contributor, nil
}

func (r *contributorRepository) ListByProject(ctx context.Context, projectID uint) ([]*entity.Contributor, error) {
	var contributors []*entity.Contributor
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&contributors).Error
	return contributors, err
}

func (r *contributorRepository) ListByUser(ctx context.Context, userID uint) ([]*entity.Contributor, error) {
	var contributors []*entity.Contributor
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&contributors).Error
	return contributors, err
}

func (r *contributorRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND permission <> ?", id, entity.PermissionCreator).
		Delete(&entity.Contributor{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
