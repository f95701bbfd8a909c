package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/softdesk/internal/access"
	"anoa.com/softdesk/internal/entity"
	"anoa.com/softdesk/internal/modules/comment/dto"
	"anoa.com/softdesk/internal/modules/comment/repository"
	contributorRepo "anoa.com/softdesk/internal/modules/contributor/repository"
	issueRepo "anoa.com/softdesk/internal/modules/issue/repository"
	projectRepo "anoa.com/softdesk/internal/modules/project/repository"
	"anoa.com/softdesk/pkg/apperror"
	"anoa.com/softdesk/pkg/logger"
	"anoa.com/softdesk/pkg/ratelimiter"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CommentService interface {
	AuthorizeCreate(ctx context.Context, scope access.Scope) error
	Create(ctx context.Context, scope access.Scope, req dto.CommentRequest) (*dto.CommentResponse, error)
	List(ctx context.Context, scope access.Scope) ([]dto.CommentResponse, error)
	Get(ctx context.Context, scope access.Scope, id uint) (*dto.CommentResponse, error)
	Update(ctx context.Context, scope access.Scope, id uint, req dto.CommentRequest) (*dto.CommentResponse, error)
	Delete(ctx context.Context, scope access.Scope, id uint) error
}

type commentService struct {
	comments     repository.CommentRepository
	issues       issueRepo.IssueRepository
	projects     projectRepo.ProjectRepository
	contributors contributorRepo.ContributorRepository
	redisClient  *redis.Client
	rateLimit    time.Duration
}

func NewCommentService(comments repository.CommentRepository, issues issueRepo.IssueRepository, projects projectRepo.ProjectRepository, contributors contributorRepo.ContributorRepository, redisClient *redis.Client, rateLimit time.Duration) CommentService {
	return &commentService{
		comments:     comments,
		issues:       issues,
		projects:     projects,
		contributors: contributors,
		redisClient:  redisClient,
		rateLimit:    rateLimit,
	}
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, apperror.ErrNotFound)
	}
	return err
}

// thread resolves the path project and issue. The issue must belong to the path
// project; otherwise it is reported as missing.
func (s *commentService) thread(ctx context.Context, scope access.Scope, action access.Action) (access.Subject, *entity.Issue, error) {
	if _, err := s.projects.FindByID(ctx, scope.ProjectID); err != nil {
		return access.Subject{}, nil, notFound("project", err)
	}

	subject, err := access.Resolve(ctx, s.contributors, scope)
	if err != nil {
		return access.Subject{}, nil, err
	}
	if !access.HasPermission(subject, access.ResourceComment, action) {
		return access.Subject{}, nil, fmt.Errorf("you are not a contributor of this project: %w", apperror.ErrForbidden)
	}

	issue, err := s.issues.FindByID(ctx, scope.ProjectID, scope.IssueID)
	if err != nil {
		return access.Subject{}, nil, notFound("issue", err)
	}
	return subject, issue, nil
}

// AuthorizeCreate checks the actor may comment on the path issue.
func (s *commentService) AuthorizeCreate(ctx context.Context, scope access.Scope) error {
	_, _, err := s.thread(ctx, scope, access.ActionCreate)
	return err
}

func (s *commentService) Create(ctx context.Context, scope access.Scope, req dto.CommentRequest) (*dto.CommentResponse, error) {
	_, issue, err := s.thread(ctx, scope, access.ActionCreate)
	if err != nil {
		return nil, err
	}

	release, err := ratelimiter.Acquire(ctx, s.redisClient, scope.ActorID, ratelimiter.ScopeComment, s.rateLimit)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		Description: req.Description,
		IssueID:     entity.UintPtr(issue.ID),
		AuthorID:    entity.UintPtr(scope.ActorID),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		release()
		return nil, notFound("issue", err)
	}

	stored, err := s.comments.FindByID(ctx, issue.ID, comment.ID)
	if err != nil {
		return nil, notFound("comment", err)
	}

	logger.Log.WithFields(logger.Fields{"comment_id": stored.ID, "issue_id": issue.ID, "user_id": scope.ActorID}).Info("comment created")

	resp := dto.NewCommentResponse(stored)
	return &resp, nil
}

func (s *commentService) List(ctx context.Context, scope access.Scope) ([]dto.CommentResponse, error) {
	_, issue, err := s.thread(ctx, scope, access.ActionList)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByIssue(ctx, issue.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, dto.NewCommentResponse(c))
	}
	return resp, nil
}

func (s *commentService) find(ctx context.Context, scope access.Scope, id uint, action access.Action) (*entity.Comment, error) {
	subject, issue, err := s.thread(ctx, scope, access.ActionList)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.FindByID(ctx, issue.ID, id)
	if err != nil {
		return nil, notFound("comment", err)
	}

	if !access.HasObjectPermission(subject, access.ResourceComment, action, access.CommentObject(comment, issue.ProjectID)) {
		return nil, fmt.Errorf("only the author can %s this comment: %w", action, apperror.ErrForbidden)
	}
	return comment, nil
}

func (s *commentService) Get(ctx context.Context, scope access.Scope, id uint) (*dto.CommentResponse, error) {
	comment, err := s.find(ctx, scope, id, access.ActionRetrieve)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, scope access.Scope, id uint, req dto.CommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.find(ctx, scope, id, access.ActionUpdate)
	if err != nil {
		return nil, err
	}

	comment.Description = req.Description
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, notFound("comment", err)
	}

	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, scope access.Scope, id uint) error {
	comment, err := s.find(ctx, scope, id, access.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return notFound("comment", err)
	}
	return nil
}
