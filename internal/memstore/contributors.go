package memstore

import (
	"context"

	"anoa.com/softdesk/internal/entity"
	contributorRepo "anoa.com/softdesk/internal/modules/contributor/repository"
	"gorm.io/gorm"
)

type contributors struct{ s *Store }

func (s *Store) Contributors() contributorRepo.ContributorRepository { return contributors{s} }

// withUser returns a detached copy with the User association filled.
func (s *Store) withUser(c *entity.Contributor) *entity.Contributor {
	cp := *c
	if u, ok := s.users[c.UserID]; ok {
		cp.User = *u
	}
	return &cp
}

func (r contributors) Create(_ context.Context, contributor *entity.Contributor) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[contributor.UserID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if _, ok := s.projects[contributor.ProjectID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if contributor.Permission == "" {
		contributor.Permission = entity.PermissionContributor
	}
	if contributor.Role == "" {
		contributor.Role = entity.RoleProjectStaff
	}
	for _, c := range s.contributors {
		if c.ProjectID != contributor.ProjectID {
			continue
		}
		if c.UserID == contributor.UserID || (c.IsCreator() && contributor.IsCreator()) {
			return gorm.ErrDuplicatedKey
		}
	}

	s.seq.contributor++
	contributor.ID = s.seq.contributor
	if contributor.CreatedAt.IsZero() {
		contributor.CreatedAt = s.now()
	}
	cp := *contributor
	cp.User, cp.Project = entity.User{}, entity.Project{}
	s.contributors[cp.ID] = &cp
	return nil
}

func (r contributors) FindByID(_ context.Context, projectID, id uint) (*entity.Contributor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.contributors[id]
	if !ok || c.ProjectID != projectID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.withUser(c), nil
}

func (r contributors) FindMembership(_ context.Context, projectID, userID uint) (*entity.Contributor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.contributors {
		if c.ProjectID == projectID && c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r contributors) FindCreator(_ context.Context, projectID uint) (*entity.Contributor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.contributors {
		if c.ProjectID == projectID && c.IsCreator() {
			return r.s.withUser(c), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r contributors) ListByProject(_ context.Context, projectID uint) ([]*entity.Contributor, error) {
	return r.list(func(c *entity.Contributor) bool { return c.ProjectID == projectID }), nil
}

func (r contributors) ListByUser(_ context.Context, userID uint) ([]*entity.Contributor, error) {
	return r.list(func(c *entity.Contributor) bool { return c.UserID == userID }), nil
}

func (r contributors) list(keep func(*entity.Contributor) bool) []*entity.Contributor {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := sortedIDs(s.contributors, keep)
	out := make([]*entity.Contributor, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.withUser(s.contributors[id]))
	}
	return out
}

func (r contributors) Delete(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contributors[id]
	if !ok || c.IsCreator() {
		return gorm.ErrRecordNotFound
	}
	delete(s.contributors, id)
	return nil
}
