package memstore

import (
	"context"
	"strings"

	"anoa.com/softdesk/internal/entity"
	userRepo "anoa.com/softdesk/internal/modules/user/repository"
	"gorm.io/gorm"
)

type users struct{ s *Store }

func (s *Store) Users() userRepo.UserRepository { return users{s} }

func (r users) Create(_ context.Context, user *entity.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}

	s.seq.user++
	user.ID = s.seq.user
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (r users) FindByID(_ context.Context, id uint) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r users) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r users) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r users) find(match func(*entity.User) bool) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r users) Delete(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, c := range s.contributors {
		if c.UserID == id && c.IsCreator() {
			return userRepo.ErrOwnsProject
		}
	}

	for _, i := range s.issues {
		if entity.SameID(i.AuthorID, id) {
			i.AuthorID = nil
		}
		if entity.SameID(i.AssigneeID, id) {
			i.AssigneeID = nil
		}
	}
	for _, c := range s.comments {
		if entity.SameID(c.AuthorID, id) {
			c.AuthorID = nil
		}
	}
	for cid, c := range s.contributors {
		if c.UserID == id {
			delete(s.contributors, cid)
		}
	}
	for tid, t := range s.tokens {
		if t.UserID == id {
			delete(s.tokens, tid)
		}
	}
	delete(s.users, id)
	return nil
}
