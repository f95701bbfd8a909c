package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"anoa.com/softdesk/internal/entity"
	"anoa.com/softdesk/pkg/logger"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const issuesIndex = "issues"

type MeiliSearchService interface {
	IndexIssue(issue *entity.Issue) error
	DeleteIssue(id uint) error
	// SearchIssues returns matching issue ids of one project, best match first.
	SearchIssues(projectID uint, query string, limit int64) ([]uint, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterableAttrs := []string{"project_id", "status", "tag"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(issuesIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		logger.Log.Warnf("failed to update issues filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_time"}
	if _, err := s.client.Index(issuesIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		logger.Log.Warnf("failed to update issues sortable attributes: %v", err)
	}

	logger.Log.Info("meilisearch indexes initialized")
}

type meiliIssueDoc struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	ProjectID   uint   `json:"project_id"`
	CreatedTime int64  `json:"created_time"`
}

// CleanText reduces user supplied text to plain words for indexing.
func (s *meiliSearchService) CleanText(content string) string {
	return cleanText(s.sanitizer, content)
}

func cleanText(policy *bluemonday.Policy, content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleaned := html.UnescapeString(policy.Sanitize(content))
	return strings.Join(strings.Fields(cleaned), " ")
}

func (s *meiliSearchService) IndexIssue(issue *entity.Issue) error {
	doc := meiliIssueDoc{
		ID:          issue.ID,
		Title:       s.CleanText(issue.Title),
		Description: s.CleanText(issue.Description),
		Tag:         string(issue.Tag),
		Priority:    string(issue.Priority),
		Status:      string(issue.Status),
		ProjectID:   issue.ProjectID,
		CreatedTime: issue.CreatedTime.Unix(),
	}

	task, err := s.client.Index(issuesIndex).AddDocuments([]meiliIssueDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	logger.Log.WithFields(logger.Fields{"issue_id": issue.ID, "task_uid": task.TaskUID}).Debug("issue indexed")
	return nil
}

func (s *meiliSearchService) DeleteIssue(id uint) error {
	_, err := s.client.Index(issuesIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliSearchService) SearchIssues(projectID uint, query string, limit int64) ([]uint, error) {
	raw, err := s.client.Index(issuesIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Filter:               fmt.Sprintf("project_id = %d", projectID),
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Hits []struct {
			ID uint `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, fmt.Errorf("decode search hits: %w", err)
	}

	ids := make([]uint, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
