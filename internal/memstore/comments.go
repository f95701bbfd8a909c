package memstore

import (
	"context"

	"anoa.com/softdesk/internal/entity"
	commentRepo "anoa.com/softdesk/internal/modules/comment/repository"
	"gorm.io/gorm"
)

type comments struct{ s *Store }

func (s *Store) Comments() commentRepo.CommentRepository { return comments{s} }

func (s *Store) withAuthor(c *entity.Comment) *entity.Comment {
	cp := *c
	cp.Issue = nil
	cp.Author = s.userRef(c.AuthorID)
	return &cp
}

func (r comments) Create(_ context.Context, comment *entity.Comment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.IssueID != nil {
		if _, ok := s.issues[*comment.IssueID]; !ok {
			return gorm.ErrForeignKeyViolated
		}
	}
	if !s.refExists(comment.AuthorID) {
		return gorm.ErrForeignKeyViolated
	}

	s.seq.comment++
	comment.ID = s.seq.comment
	if comment.CreatedTime.IsZero() {
		comment.CreatedTime = s.now()
	}
	cp := *comment
	cp.Issue, cp.Author = nil, nil
	s.comments[cp.ID] = &cp
	return nil
}

func (r comments) FindByID(_ context.Context, issueID, id uint) (*entity.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok || !entity.SameID(c.IssueID, issueID) {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.withAuthor(c), nil
}

func (r comments) ListByIssue(_ context.Context, issueID uint) ([]*entity.Comment, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := sortedIDs(s.comments, func(c *entity.Comment) bool { return entity.SameID(c.IssueID, issueID) })
	out := make([]*entity.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.withAuthor(s.comments[id]))
	}
	return out, nil
}

func (r comments) Update(_ context.Context, comment *entity.Comment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.comments[comment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Description = comment.Description
	return nil
}

func (r comments) Delete(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.comments, id)
	return nil
}
