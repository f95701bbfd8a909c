package repository

import (
	"context"
	"errors"

	"anoa.com/softdesk/internal/entity"
	"gorm.io/gorm"
)

// ErrOwnsProject is returned by Delete while the user is still the creator of a
// project.
var ErrOwnsProject = errors.New("user is the creator of a project")

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	// Delete removes the user, drops their contributor rows and nulls every issue and
	// comment reference to them, atomically. It refuses with ErrOwnsProject while any
	// creator row of the user exists.
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&entity.Contributor{}).
			Where("user_id = ? AND permission = ?", id, entity.PermissionCreator).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return ErrOwnsProject
		}

		if err := tx.Model(&entity.Issue{}).Where("author_id = ?", id).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Issue{}).Where("assignee_id = ?", id).
			Update("assignee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Comment{}).Where("author_id = ?", id).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.Contributor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.IssuedToken{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
