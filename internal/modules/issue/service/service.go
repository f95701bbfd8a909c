package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/softdesk/internal/access"
	"anoa.com/softdesk/internal/entity"
	contributorRepo "anoa.com/softdesk/internal/modules/contributor/repository"
	"anoa.com/softdesk/internal/modules/issue/dto"
	"anoa.com/softdesk/internal/modules/issue/repository"
	projectRepo "anoa.com/softdesk/internal/modules/project/repository"
	search "anoa.com/softdesk/internal/modules/search/service"
	"anoa.com/softdesk/pkg/apperror"
	"anoa.com/softdesk/pkg/logger"
	"anoa.com/softdesk/pkg/ratelimiter"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultSearchLimit = 20

type IssueService interface {
	AuthorizeCreate(ctx context.Context, scope access.Scope) error
	Create(ctx context.Context, scope access.Scope, req dto.CreateIssueRequest) (*dto.IssueResponse, error)
	List(ctx context.Context, scope access.Scope) ([]dto.IssueResponse, error)
	Get(ctx context.Context, scope access.Scope, id uint) (*dto.IssueResponse, error)
	Update(ctx context.Context, scope access.Scope, id uint, req dto.PatchIssueRequest) (*dto.IssueResponse, error)
	Delete(ctx context.Context, scope access.Scope, id uint) error
	Search(ctx context.Context, scope access.Scope, query dto.SearchIssueQuery) ([]dto.IssueResponse, error)
}

type issueService struct {
	issues       repository.IssueRepository
	projects     projectRepo.ProjectRepository
	contributors contributorRepo.ContributorRepository
	meili        search.MeiliSearchService
	redisClient  *redis.Client
	rateLimit    time.Duration
}

func NewIssueService(issues repository.IssueRepository, projects projectRepo.ProjectRepository, contributors contributorRepo.ContributorRepository, meili search.MeiliSearchService, redisClient *redis.Client, rateLimit time.Duration) IssueService {
	return &issueService{
		issues:       issues,
		projects:     projects,
		contributors: contributors,
		meili:        meili,
		redisClient:  redisClient,
		rateLimit:    rateLimit,
	}
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.NewValidationError("title", "issue with this title already exists.")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperror.NewValidationError("assignee", "assignee does not exist.")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("issue not found: %w", apperror.ErrNotFound)
	}
	return err
}

// member resolves the actor against the path project and requires enrollment.
func (s *issueService) member(ctx context.Context, scope access.Scope, action access.Action) (access.Subject, error) {
	if _, err := s.projects.FindByID(ctx, scope.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Subject{}, fmt.Errorf("project not found: %w", apperror.ErrNotFound)
		}
		return access.Subject{}, err
	}

	subject, err := access.Resolve(ctx, s.contributors, scope)
	if err != nil {
		return access.Subject{}, err
	}
	if !access.HasPermission(subject, access.ResourceIssue, action) {
		return access.Subject{}, fmt.Errorf("you are not a contributor of this project: %w", apperror.ErrForbidden)
	}
	return subject, nil
}

// checkAssignee requires the assignee to be enrolled in the project.
func (s *issueService) checkAssignee(ctx context.Context, projectID, userID uint) error {
	membership, err := s.contributors.FindMembership(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperror.NewValidationError("assignee", "assignee must be a contributor of this project.")
	}
	return nil
}

func (s *issueService) AuthorizeCreate(ctx context.Context, scope access.Scope) error {
	_, err := s.member(ctx, scope, access.ActionCreate)
	return err
}

func (s *issueService) Create(ctx context.Context, scope access.Scope, req dto.CreateIssueRequest) (*dto.IssueResponse, error) {
	if _, err := s.member(ctx, scope, access.ActionCreate); err != nil {
		return nil, err
	}

	assigneeID := scope.ActorID
	if req.Assignee != nil {
		assigneeID = *req.Assignee
		if err := s.checkAssignee(ctx, scope.ProjectID, assigneeID); err != nil {
			return nil, err
		}
	}

	release, err := ratelimiter.Acquire(ctx, s.redisClient, scope.ActorID, ratelimiter.ScopeIssue, s.rateLimit)
	if err != nil {
		return nil, err
	}
	created := false
	defer func() {
		if !created {
			release()
		}
	}()

	issue := &entity.Issue{
		Title:       req.Title,
		Description: req.Description,
		Tag:         req.Tag,
		Priority:    req.Priority,
		Status:      req.Status,
		ProjectID:   scope.ProjectID,
		AuthorID:    entity.UintPtr(scope.ActorID),
		AssigneeID:  entity.UintPtr(assigneeID),
	}
	if issue.Tag == "" {
		issue.Tag = entity.TagBug
	}
	if issue.Priority == "" {
		issue.Priority = entity.PriorityLow
	}
	if issue.Status == "" {
		issue.Status = entity.StatusTodo
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, translateStoreError(err)
	}
	created = true

	stored, err := s.issues.FindByID(ctx, scope.ProjectID, issue.ID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	s.index(stored)

	logger.Log.WithFields(logger.Fields{"issue_id": stored.ID, "project_id": scope.ProjectID, "user_id": scope.ActorID}).Info("issue created")

	resp := dto.NewIssueResponse(stored)
	return &resp, nil
}

func (s *issueService) index(issue *entity.Issue) {
	if s.meili == nil {
		return
	}
	if err := s.meili.IndexIssue(issue); err != nil {
		logger.Log.WithField("issue_id", issue.ID).Warnf("failed to index issue: %v", err)
	}
}

func (s *issueService) List(ctx context.Context, scope access.Scope) ([]dto.IssueResponse, error) {
	if _, err := s.member(ctx, scope, access.ActionList); err != nil {
		return nil, err
	}

	issues, err := s.issues.ListByProject(ctx, scope.ProjectID)
	if err != nil {
		return nil, err
	}
	return toResponses(issues), nil
}

func toResponses(issues []*entity.Issue) []dto.IssueResponse {
	resp := make([]dto.IssueResponse, 0, len(issues))
	for _, i := range issues {
		resp = append(resp, dto.NewIssueResponse(i))
	}
	return resp
}

func (s *issueService) find(ctx context.Context, scope access.Scope, id uint, action access.Action) (*entity.Issue, error) {
	subject, err := s.member(ctx, scope, access.ActionList)
	if err != nil {
		return nil, err
	}

	issue, err := s.issues.FindByID(ctx, scope.ProjectID, id)
	if err != nil {
		return nil, translateStoreError(err)
	}

	if !access.HasObjectPermission(subject, access.ResourceIssue, action, access.IssueObject(issue)) {
		return nil, fmt.Errorf("only the author or the assignee can %s this issue: %w", action, apperror.ErrForbidden)
	}
	return issue, nil
}

func (s *issueService) Get(ctx context.Context, scope access.Scope, id uint) (*dto.IssueResponse, error) {
	issue, err := s.find(ctx, scope, id, access.ActionRetrieve)
	if err != nil {
		return nil, err
	}
	resp := dto.NewIssueResponse(issue)
	return &resp, nil
}

// Update applies the set fields of req. Author and project never change.
func (s *issueService) Update(ctx context.Context, scope access.Scope, id uint, req dto.PatchIssueRequest) (*dto.IssueResponse, error) {
	issue, err := s.find(ctx, scope, id, access.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.Tag != nil {
		issue.Tag = *req.Tag
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
	if req.Status != nil {
		issue.Status = *req.Status
	}
	switch {
	case req.Assignee != nil:
		if !entity.SameID(issue.AssigneeID, *req.Assignee) {
			if err := s.checkAssignee(ctx, scope.ProjectID, *req.Assignee); err != nil {
				return nil, err
			}
		}
		issue.AssigneeID = entity.UintPtr(*req.Assignee)
	case req.Unassign:
		issue.AssigneeID = nil
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, translateStoreError(err)
	}

	stored, err := s.issues.FindByID(ctx, scope.ProjectID, issue.ID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	s.index(stored)

	resp := dto.NewIssueResponse(stored)
	return &resp, nil
}

func (s *issueService) Delete(ctx context.Context, scope access.Scope, id uint) error {
	issue, err := s.find(ctx, scope, id, access.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.issues.Delete(ctx, issue.ID); err != nil {
		return translateStoreError(err)
	}

	if s.meili != nil {
		if err := s.meili.DeleteIssue(issue.ID); err != nil {
			logger.Log.WithField("issue_id", issue.ID).Warnf("failed to remove issue from search index: %v", err)
		}
	}

	logger.Log.WithFields(logger.Fields{"issue_id": issue.ID, "project_id": scope.ProjectID, "user_id": scope.ActorID}).Info("issue deleted")
	return nil
}
