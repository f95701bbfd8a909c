package service

import (
	"context"
	"strings"

	"anoa.com/softdesk/internal/access"
	"anoa.com/softdesk/internal/entity"
	"anoa.com/softdesk/internal/modules/issue/dto"
	"anoa.com/softdesk/pkg/logger"
)

// Search finds issues of the path project. Without a search index it falls back to
// a case-insensitive match on title and description.
func (s *issueService) Search(ctx context.Context, scope access.Scope, query dto.SearchIssueQuery) ([]dto.IssueResponse, error) {
	if _, err := s.member(ctx, scope, access.ActionList); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if s.meili != nil {
		ids, err := s.meili.SearchIssues(scope.ProjectID, query.Q, limit)
		if err == nil {
			return s.loadInOrder(ctx, scope.ProjectID, ids)
		}
		logger.Log.WithField("project_id", scope.ProjectID).Warnf("search index unavailable, scanning store: %v", err)
	}

	issues, err := s.issues.ListByProject(ctx, scope.ProjectID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query.Q))
	var matched []*entity.Issue
	for _, i := range issues {
		if int64(len(matched)) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(i.Title), needle) || strings.Contains(strings.ToLower(i.Description), needle) {
			matched = append(matched, i)
		}
	}
	return toResponses(matched), nil
}

// loadInOrder reads the hits back from the store, which also drops ids that no
// longer exist or belong to another project.
func (s *issueService) loadInOrder(ctx context.Context, projectID uint, ids []uint) ([]dto.IssueResponse, error) {
	issues, err := s.issues.FindByIDs(ctx, projectID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*entity.Issue, len(issues))
	for _, i := range issues {
		byID[i.ID] = i
	}

	ordered := make([]*entity.Issue, 0, len(issues))
	for _, id := range ids {
		if i, ok := byID[id]; ok {
			ordered = append(ordered, i)
		}
	}
	return toResponses(ordered), nil
}
