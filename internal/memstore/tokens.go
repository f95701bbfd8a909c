package memstore

import (
	"context"
	"time"

	"anoa.com/softdesk/internal/entity"
	userRepo "anoa.com/softdesk/internal/modules/user/repository"
	"gorm.io/gorm"
)

type tokens struct{ s *Store }

func (s *Store) Tokens() userRepo.TokenRepository { return tokens{s} }

func (r tokens) Track(_ context.Context, userID uint, tokenID string, expiresAt time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if _, ok := s.tokens[tokenID]; ok {
		return gorm.ErrDuplicatedKey
	}
	s.tokens[tokenID] = &entity.IssuedToken{
		ID:        tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	return nil
}

func (r tokens) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tokens[tokenID]; ok && t.RevokedAt == nil {
		now := s.now()
		t.RevokedAt = &now
	}
	return nil
}

func (r tokens) RevokeAll(_ context.Context, userID uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, t := range s.tokens {
		if t.UserID != userID {
			continue
		}
		if t.ExpiresAt.Before(now) {
			delete(s.tokens, id)
			continue
		}
		if t.RevokedAt == nil {
			revokedAt := now
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (r tokens) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[tokenID]
	if !ok {
		return true, nil
	}
	return t.RevokedAt != nil, nil
}
