package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/softdesk/internal/access"
	commonDto "anoa.com/softdesk/internal/dto"
	"anoa.com/softdesk/internal/entity"
	contributorRepo "anoa.com/softdesk/internal/modules/contributor/repository"
	issueRepo "anoa.com/softdesk/internal/modules/issue/repository"
	"anoa.com/softdesk/internal/modules/project/dto"
	"anoa.com/softdesk/internal/modules/project/repository"
	search "anoa.com/softdesk/internal/modules/search/service"
	"anoa.com/softdesk/pkg/apperror"
	"anoa.com/softdesk/pkg/logger"
	"gorm.io/gorm"
)

type ProjectService interface {
	Create(ctx context.Context, actorID uint, req dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	List(ctx context.Context, actorID uint) ([]dto.ProjectResponse, error)
	Get(ctx context.Context, scope access.Scope) (*dto.ProjectDetailResponse, error)
	Update(ctx context.Context, scope access.Scope, req dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Patch(ctx context.Context, scope access.Scope, req dto.PatchProjectRequest) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, scope access.Scope) error
}

type projectService struct {
	projects     repository.ProjectRepository
	contributors contributorRepo.ContributorRepository
	issues       issueRepo.IssueRepository
	meili        search.MeiliSearchService
}

func NewProjectService(projects repository.ProjectRepository, contributors contributorRepo.ContributorRepository, issues issueRepo.IssueRepository, meili search.MeiliSearchService) ProjectService {
	return &projectService{
		projects:     projects,
		contributors: contributors,
		issues:       issues,
		meili:        meili,
	}
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.NewValidationError("title", "project with this title already exists.")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("project not found: %w", apperror.ErrNotFound)
	}
	return err
}

func (s *projectService) Create(ctx context.Context, actorID uint, req dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if !access.HasPermission(access.Subject{UserID: actorID}, access.ResourceProject, access.ActionCreate) {
		return nil, fmt.Errorf("authentication required: %w", apperror.ErrUnauthorized)
	}

	project := &entity.Project{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
	}
	owner := &entity.Contributor{
		UserID:     actorID,
		Permission: entity.PermissionCreator,
		Role:       entity.RoleProjectManager,
	}

	if err := s.projects.CreateWithOwner(ctx, project, owner); err != nil {
		return nil, translateStoreError(err)
	}

	logger.Log.WithFields(logger.Fields{"project_id": project.ID, "user_id": actorID}).Info("project created")

	resp := dto.NewProjectResponse(project)
	return &resp, nil
}

func (s *projectService) List(ctx context.Context, actorID uint) ([]dto.ProjectResponse, error) {
	if !access.HasPermission(access.Subject{UserID: actorID}, access.ResourceProject, access.ActionList) {
		return nil, fmt.Errorf("authentication required: %w", apperror.ErrUnauthorized)
	}

	projects, err := s.projects.FindByMember(ctx, actorID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, dto.NewProjectResponse(p))
	}
	return resp, nil
}

// authorize loads the project and checks the actor may perform action on it.
func (s *projectService) authorize(ctx context.Context, scope access.Scope, action access.Action) (*entity.Project, error) {
	project, err := s.projects.FindByID(ctx, scope.ProjectID)
	if err != nil {
		return nil, translateStoreError(err)
	}

	subject, err := access.Resolve(ctx, s.contributors, scope)
	if err != nil {
		return nil, err
	}
	if !access.HasObjectPermission(subject, access.ResourceProject, action, access.ProjectObject(project)) {
		return nil, fmt.Errorf("you do not have permission to %s this project: %w", action, apperror.ErrForbidden)
	}
	return project, nil
}

func (s *projectService) Get(ctx context.Context, scope access.Scope) (*dto.ProjectDetailResponse, error) {
	project, err := s.authorize(ctx, scope, access.ActionRetrieve)
	if err != nil {
		return nil, err
	}

	members, err := s.contributors.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProjectDetailResponse{
		ProjectResponse: dto.NewProjectResponse(project),
		Members:         make([]commonDto.ContributorResponse, 0, len(members)),
	}
	for _, m := range members {
		row := commonDto.NewContributorResponse(m)
		if m.IsCreator() {
			author := row
			resp.Author = &author
		}
		resp.Members = append(resp.Members, row)
	}
	return resp, nil
}

func (s *projectService) Update(ctx context.Context, scope access.Scope, req dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	return s.Patch(ctx, scope, dto.PatchProjectRequest{
		Title:       &req.Title,
		Description: &req.Description,
		Type:        &req.Type,
	})
}

func (s *projectService) Patch(ctx context.Context, scope access.Scope, req dto.PatchProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.authorize(ctx, scope, access.ActionUpdate)
	if err != nil {
		return nil, err
	}

	req.Apply(project)
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, translateStoreError(err)
	}

	resp := dto.NewProjectResponse(project)
	return &resp, nil
}

func (s *projectService) Delete(ctx context.Context, scope access.Scope) error {
	project, err := s.authorize(ctx, scope, access.ActionDelete)
	if err != nil {
		return err
	}

	var indexed []*entity.Issue
	if s.meili != nil {
		indexed, err = s.issues.ListByProject(ctx, project.ID)
		if err != nil {
			return err
		}
	}

	if err := s.projects.Delete(ctx, project.ID); err != nil {
		return translateStoreError(err)
	}

	for _, issue := range indexed {
		if err := s.meili.DeleteIssue(issue.ID); err != nil {
			logger.Log.WithField("issue_id", issue.ID).Warnf("failed to remove issue from search index: %v", err)
		}
	}

	logger.Log.WithFields(logger.Fields{"project_id": project.ID, "user_id": scope.ActorID}).Info("project deleted")
	return nil
}
