package memstore

import (
	"context"

	"anoa.com/softdesk/internal/entity"
	projectRepo "anoa.com/softdesk/internal/modules/project/repository"
	"gorm.io/gorm"
)

type projects struct{ s *Store }

func (s *Store) Projects() projectRepo.ProjectRepository { return projects{s} }

func (s *Store) titleTaken(title string, exceptID uint) bool {
	for _, p := range s.projects {
		if p.Title == title && p.ID != exceptID {
			return true
		}
	}
	return false
}

// CreateWithOwner checks every constraint before writing, so a failure leaves
// neither row behind.
func (r projects) CreateWithOwner(_ context.Context, project *entity.Project, owner *entity.Contributor) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.titleTaken(project.Title, 0) {
		return gorm.ErrDuplicatedKey
	}
	if _, ok := s.users[owner.UserID]; !ok {
		return gorm.ErrForeignKeyViolated
	}

	now := s.now()
	s.seq.project++
	project.ID = s.seq.project
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	p := *project
	s.projects[p.ID] = &p

	s.seq.contributor++
	owner.ID = s.seq.contributor
	owner.ProjectID = project.ID
	if owner.CreatedAt.IsZero() {
		owner.CreatedAt = now
	}
	c := *owner
	c.User, c.Project = entity.User{}, entity.Project{}
	s.contributors[c.ID] = &c
	return nil
}

func (r projects) FindByID(_ context.Context, id uint) (*entity.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r projects) FindByMember(_ context.Context, userID uint) ([]*entity.Project, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	enrolled := make(map[uint]bool)
	for _, c := range s.contributors {
		if c.UserID == userID {
			enrolled[c.ProjectID] = true
		}
	}

	out := make([]*entity.Project, 0, len(enrolled))
	for _, id := range sortedIDs(s.projects, func(p *entity.Project) bool { return enrolled[p.ID] }) {
		cp := *s.projects[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r projects) Update(_ context.Context, project *entity.Project) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[project.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if s.titleTaken(project.Title, project.ID) {
		return gorm.ErrDuplicatedKey
	}
	p.Title = project.Title
	p.Description = project.Description
	p.Type = project.Type
	return nil
}

func (r projects) Delete(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return gorm.ErrRecordNotFound
	}

	for iid, i := range s.issues {
		if i.ProjectID != id {
			continue
		}
		s.orphanComments(iid)
		delete(s.issues, iid)
	}
	for cid, c := range s.contributors {
		if c.ProjectID == id {
			delete(s.contributors, cid)
		}
	}
	delete(s.projects, id)
	return nil
}
