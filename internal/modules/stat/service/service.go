package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/softdesk/internal/access"
	"anoa.com/softdesk/internal/entity"
	contributorRepo "anoa.com/softdesk/internal/modules/contributor/repository"
	issueRepo "anoa.com/softdesk/internal/modules/issue/repository"
	projectRepo "anoa.com/softdesk/internal/modules/project/repository"
	"anoa.com/softdesk/pkg/apperror"
	"gorm.io/gorm"
)

// ProjectStats counts a project's issues and members. Keys of the issue maps are
// display labels.
type ProjectStats struct {
	Project      uint             `json:"project"`
	Contributors int              `json:"contributors"`
	Issues       int              `json:"issues"`
	Unassigned   int              `json:"unassigned"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByPriority   map[string]int64 `json:"by_priority"`
	ByTag        map[string]int64 `json:"by_tag"`
}

type StatService interface {
	ProjectStats(ctx context.Context, scope access.Scope) (*ProjectStats, error)
}

type statService struct {
	projects     projectRepo.ProjectRepository
	contributors contributorRepo.ContributorRepository
	issues       issueRepo.IssueRepository
}

func NewStatService(projects projectRepo.ProjectRepository, contributors contributorRepo.ContributorRepository, issues issueRepo.IssueRepository) StatService {
	return &statService{
		projects:     projects,
		contributors: contributors,
		issues:       issues,
	}
}

func (s *statService) ProjectStats(ctx context.Context, scope access.Scope) (*ProjectStats, error) {
	if _, err := s.projects.FindByID(ctx, scope.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	subject, err := access.Resolve(ctx, s.contributors, scope)
	if err != nil {
		return nil, err
	}
	if !access.HasPermission(subject, access.ResourceIssue, access.ActionList) {
		return nil, fmt.Errorf("you are not a contributor of this project: %w", apperror.ErrForbidden)
	}

	members, err := s.contributors.ListByProject(ctx, scope.ProjectID)
	if err != nil {
		return nil, err
	}
	issues, err := s.issues.ListByProject(ctx, scope.ProjectID)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		Project:      scope.ProjectID,
		Contributors: len(members),
		Issues:       len(issues),
		ByStatus:     make(map[string]int64),
		ByPriority:   make(map[string]int64),
		ByTag:        make(map[string]int64),
	}
	for _, status := range []entity.Status{entity.StatusTodo, entity.StatusDoing, entity.StatusDone} {
		stats.ByStatus[status.Label()] = 0
	}
	for _, priority := range []entity.Priority{entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh} {
		stats.ByPriority[priority.Label()] = 0
	}
	for _, tag := range []entity.Tag{entity.TagBug, entity.TagImprove, entity.TagTask} {
		stats.ByTag[tag.Label()] = 0
	}

	for _, issue := range issues {
		stats.ByStatus[issue.Status.Label()]++
		stats.ByPriority[issue.Priority.Label()]++
		stats.ByTag[issue.Tag.Label()]++
		if issue.AssigneeID == nil {
			stats.Unassigned++
		}
	}

	return stats, nil
}
