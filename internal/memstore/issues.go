package memstore

import (
	"context"

	"anoa.com/softdesk/internal/entity"
	issueRepo "anoa.com/softdesk/internal/modules/issue/repository"
	"gorm.io/gorm"
)

type issues struct{ s *Store }

func (s *Store) Issues() issueRepo.IssueRepository { return issues{s} }

func (s *Store) withUsers(i *entity.Issue) *entity.Issue {
	cp := *i
	cp.Project = entity.Project{}
	cp.Author = s.userRef(i.AuthorID)
	cp.Assignee = s.userRef(i.AssigneeID)
	return &cp
}

func (s *Store) issueTitleTaken(title string, exceptID uint) bool {
	for _, i := range s.issues {
		if i.Title == title && i.ID != exceptID {
			return true
		}
	}
	return false
}

// orphanComments detaches the comments of an issue; callers hold the write lock.
func (s *Store) orphanComments(issueID uint) {
	for _, c := range s.comments {
		if entity.SameID(c.IssueID, issueID) {
			c.IssueID = nil
		}
	}
}

func (r issues) Create(_ context.Context, issue *entity.Issue) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[issue.ProjectID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if !s.refExists(issue.AuthorID) || !s.refExists(issue.AssigneeID) {
		return gorm.ErrForeignKeyViolated
	}
	if s.issueTitleTaken(issue.Title, 0) {
		return gorm.ErrDuplicatedKey
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

	s.seq.issue++
	issue.ID = s.seq.issue
	if issue.CreatedTime.IsZero() {
		issue.CreatedTime = s.now()
	}
	cp := *issue
	cp.Project, cp.Author, cp.Assignee = entity.Project{}, nil, nil
	s.issues[cp.ID] = &cp
	return nil
}

func (r issues) FindByID(_ context.Context, projectID, id uint) (*entity.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.issues[id]
	if !ok || i.ProjectID != projectID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.withUsers(i), nil
}

func (r issues) FindByIDs(_ context.Context, projectID uint, ids []uint) ([]*entity.Issue, error) {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.list(func(i *entity.Issue) bool { return i.ProjectID == projectID && wanted[i.ID] }), nil
}

func (r issues) ListByProject(_ context.Context, projectID uint) ([]*entity.Issue, error) {
	return r.list(func(i *entity.Issue) bool { return i.ProjectID == projectID }), nil
}

func (r issues) list(keep func(*entity.Issue) bool) []*entity.Issue {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := sortedIDs(s.issues, keep)
	out := make([]*entity.Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.withUsers(s.issues[id]))
	}
	return out
}

func (r issues) Update(_ context.Context, issue *entity.Issue) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.issues[issue.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if !s.refExists(issue.AssigneeID) {
		return gorm.ErrForeignKeyViolated
	}
	if s.issueTitleTaken(issue.Title, issue.ID) {
		return gorm.ErrDuplicatedKey
	}
	stored.Title = issue.Title
	stored.Description = issue.Description
	stored.Tag = issue.Tag
	stored.Priority = issue.Priority
	stored.Status = issue.Status
	stored.AssigneeID = issue.AssigneeID
	return nil
}

func (r issues) Delete(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.issues[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.orphanComments(id)
	delete(s.issues, id)
	return nil
}
