package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/softdesk/internal/access"
	commonDto "anoa.com/softdesk/internal/dto"
	"anoa.com/softdesk/internal/entity"
	"anoa.com/softdesk/internal/modules/contributor/dto"
	"anoa.com/softdesk/internal/modules/contributor/repository"
	projectRepo "anoa.com/softdesk/internal/modules/project/repository"
	userRepo "anoa.com/softdesk/internal/modules/user/repository"
	"anoa.com/softdesk/pkg/apperror"
	"anoa.com/softdesk/pkg/logger"
	"gorm.io/gorm"
)

type ContributorService interface {
	// AuthorizeCreate runs only the enrollment permission check of Create.
	AuthorizeCreate(ctx context.Context, scope access.Scope) error
	Create(ctx context.Context, scope access.Scope, req dto.CreateContributorRequest) (*commonDto.ContributorResponse, error)
	List(ctx context.Context, scope access.Scope) ([]commonDto.ContributorResponse, error)
	Get(ctx context.Context, scope access.Scope, id uint) (*commonDto.ContributorResponse, error)
	Delete(ctx context.Context, scope access.Scope, id uint) error
}

type contributorService struct {
	contributors repository.ContributorRepository
	projects     projectRepo.ProjectRepository
	users        userRepo.UserRepository
}

func NewContributorService(contributors repository.ContributorRepository, projects projectRepo.ProjectRepository, users userRepo.UserRepository) ContributorService {
	return &contributorService{
		contributors: contributors,
		projects:     projects,
		users:        users,
	}
}

// subject resolves the actor against the path project, failing with NotFound when
// the project does not exist.
func (s *contributorService) subject(ctx context.Context, scope access.Scope) (access.Subject, error) {
	if _, err := s.projects.FindByID(ctx, scope.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Subject{}, fmt.Errorf("project not found: %w", apperror.ErrNotFound)
		}
		return access.Subject{}, err
	}
	return access.Resolve(ctx, s.contributors, scope)
}

func (s *contributorService) AuthorizeCreate(ctx context.Context, scope access.Scope) error {
	subject, err := s.subject(ctx, scope)
	if err != nil {
		return err
	}
	if !access.HasPermission(subject, access.ResourceContributor, access.ActionCreate) {
		return fmt.Errorf("only the project creator can add contributors: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *contributorService) Create(ctx context.Context, scope access.Scope, req dto.CreateContributorRequest) (*commonDto.ContributorResponse, error) {
	if err := s.AuthorizeCreate(ctx, scope); err != nil {
		return nil, err
	}

	if req.Permission == entity.PermissionCreator {
		return nil, apperror.NewValidationError("permission", "a project has exactly one creator.")
	}

	user, err := s.users.FindByID(ctx, req.User)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewValidationError("user", fmt.Sprintf("invalid pk \"%d\" - object does not exist.", req.User))
		}
		return nil, err
	}

	contributor := &entity.Contributor{
		UserID:     user.ID,
		ProjectID:  scope.ProjectID,
		Permission: entity.PermissionContributor,
		Role:       entity.RoleProjectStaff,
	}
	if req.Role != "" {
		contributor.Role = req.Role
	}

	if err := s.contributors.Create(ctx, contributor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("user %d is already a contributor of this project: %w", user.ID, apperror.ErrConflict)
		}
		return nil, err
	}

	logger.Log.WithFields(logger.Fields{
		"project_id": scope.ProjectID,
		"user_id":    user.ID,
		"added_by":   scope.ActorID,
	}).Info("contributor added")

	contributor.User = *user
	resp := commonDto.NewContributorResponse(contributor)
	return &resp, nil
}

func (s *contributorService) List(ctx context.Context, scope access.Scope) ([]commonDto.ContributorResponse, error) {
	subject, err := s.subject(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !access.HasPermission(subject, access.ResourceContributor, access.ActionList) {
		return nil, fmt.Errorf("you are not a contributor of this project: %w", apperror.ErrForbidden)
	}

	contributors, err := s.contributors.ListByProject(ctx, scope.ProjectID)
	if err != nil {
		return nil, err
	}

	resp := make([]commonDto.ContributorResponse, 0, len(contributors))
	for _, c := range contributors {
		resp = append(resp, commonDto.NewContributorResponse(c))
	}
	return resp, nil
}

// find gates on membership before looking the row up, then runs the object check.
func (s *contributorService) find(ctx context.Context, scope access.Scope, id uint, action access.Action) (*entity.Contributor, error) {
	subject, err := s.subject(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !access.HasPermission(subject, access.ResourceContributor, access.ActionList) {
		return nil, fmt.Errorf("you are not a contributor of this project: %w", apperror.ErrForbidden)
	}

	contributor, err := s.contributors.FindByID(ctx, scope.ProjectID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contributor not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !access.HasObjectPermission(subject, access.ResourceContributor, action, access.ContributorObject(contributor)) {
		if contributor.IsCreator() {
			return nil, fmt.Errorf("the project creator cannot be removed: %w", apperror.ErrForbidden)
		}
		return nil, fmt.Errorf("only the project creator can %s contributors: %w", action, apperror.ErrForbidden)
	}
	return contributor, nil
}

func (s *contributorService) Get(ctx context.Context, scope access.Scope, id uint) (*commonDto.ContributorResponse, error) {
	contributor, err := s.find(ctx, scope, id, access.ActionRetrieve)
	if err != nil {
		return nil, err
	}
	resp := commonDto.NewContributorResponse(contributor)
	return &resp, nil
}

func (s *contributorService) Delete(ctx context.Context, scope access.Scope, id uint) error {
	contributor, err := s.find(ctx, scope, id, access.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.contributors.Delete(ctx, contributor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("contributor not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	logger.Log.WithFields(logger.Fields{
		"project_id": scope.ProjectID,
		"user_id":    contributor.UserID,
		"removed_by": scope.ActorID,
	}).Info("contributor removed")
	return nil
}
