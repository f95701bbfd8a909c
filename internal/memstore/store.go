// Package memstore keeps every repository in process memory behind a single lock.
// It honours the same uniqueness and reference rules as the PostgreSQL schema and
// reports violations with the gorm sentinel errors, so services cannot tell the two
// apart. Used by tests and by STORE_DRIVER=memory.
package memstore

import (
	"sort"
	"sync"
	"time"

	"anoa.com/softdesk/internal/entity"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users        map[uint]*entity.User
	projects     map[uint]*entity.Project
	contributors map[uint]*entity.Contributor
	issues       map[uint]*entity.Issue
	comments     map[uint]*entity.Comment
	tokens       map[string]*entity.IssuedToken

	seq struct {
		user, project, contributor, issue, comment uint
	}
}

func New() *Store {
	return &Store{
		now:          time.Now,
		users:        make(map[uint]*entity.User),
		projects:     make(map[uint]*entity.Project),
		contributors: make(map[uint]*entity.Contributor),
		issues:       make(map[uint]*entity.Issue),
		comments:     make(map[uint]*entity.Comment),
		tokens:       make(map[string]*entity.IssuedToken),
	}
}

// userRef resolves an optional user reference to a detached copy.
func (s *Store) userRef(id *uint) *entity.User {
	if id == nil {
		return nil
	}
	u, ok := s.users[*id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (s *Store) refExists(id *uint) bool {
	if id == nil {
		return true
	}
	_, ok := s.users[*id]
	return ok
}

func sortedIDs[T any](m map[uint]T, keep func(T) bool) []uint {
	ids := make([]uint, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
