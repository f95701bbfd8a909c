package repository

import (
	"context"

	"anoa.com/softdesk/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository interface {
	// CreateWithOwner stores the project and its creator contributor in one
	// transaction; neither row survives if the other fails.
	CreateWithOwner(ctx context.Context, project *entity.Project, owner *entity.Contributor) error
	FindByID(ctx context.Context, id uint) (*entity.Project, error)
	FindByMember(ctx context.Context, userID uint) ([]*entity.Project, error)
	Update(ctx context.Context, project *entity.Project) error
	// Delete removes the project with its contributors and issues and detaches the
	// comments of those issues.
	Delete(ctx context.Context, id uint) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) CreateWithOwner(ctx context.Context, project *entity.Project, owner *entity.Contributor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		owner.ProjectID = project.ID
		return tx.Omit(clause.Associations).Create(owner).Error
	})
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*entity.Project, error) {
	var project entity.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByMember(ctx context.Context, userID uint) ([]*entity.Project, error) {
	var projects []*entity.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN contributors ON contributors.project_id = projects.id").
		Where("contributors.user_id = ?", userID).
		Order("projects.id ASC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Model(project).
		Select("title", "description", "type").
		Updates(project).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		issueIDs := tx.Model(&entity.Issue{}).Select("id").Where("project_id = ?", id)
		if err := tx.Model(&entity.Comment{}).Where("issue_id IN (?)", issueIDs).
			Update("issue_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&entity.Issue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&entity.Contributor{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
