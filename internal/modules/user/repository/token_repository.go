package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/softdesk/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// TokenRepository remembers issued bearer tokens so logout can revoke one of them
// and logout-all can revoke every token of a user.
type TokenRepository interface {
	Track(ctx context.Context, userID uint, tokenID string, expiresAt time.Time) error
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	RevokeAll(ctx context.Context, userID uint) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type gormTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &gormTokenRepository{db: db, now: time.Now}
}

func (r *gormTokenRepository) Track(ctx context.Context, userID uint, tokenID string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Create(&entity.IssuedToken{
		ID:        tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}).Error
}

func (r *gormTokenRepository) Revoke(ctx context.Context, tokenID string, _ time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.IssuedToken{}).
		Where("id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", r.now()).Error
}

func (r *gormTokenRepository) RevokeAll(ctx context.Context, userID uint) error {
	now := r.now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND expires_at < ?", userID, now).
			Delete(&entity.IssuedToken{}).Error; err != nil {
			return err
		}
		return tx.Model(&entity.IssuedToken{}).
			Where("user_id = ? AND revoked_at IS NULL", userID).
			Update("revoked_at", now).Error
	})
}

// IsRevoked treats unknown token ids as revoked: every valid token was tracked at
// login, so a missing row means it was purged with its user.
func (r *gormTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var token entity.IssuedToken
	err := r.db.WithContext(ctx).Select("id", "revoked_at").First(&token, "id = ?", tokenID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return token.RevokedAt != nil, nil
}

type redisTokenRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client, now: time.Now}
}

func issuedKey(tokenID string) string {
	return fmt.Sprintf("token:issued:%s", tokenID)
}

func userTokensKey(userID uint) string {
	return fmt.Sprintf("token:user:%d", userID)
}

func (r *redisTokenRepository) ttl(expiresAt time.Time) time.Duration {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}

func (r *redisTokenRepository) Track(ctx context.Context, userID uint, tokenID string, expiresAt time.Time) error {
	ttl := r.ttl(expiresAt)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, issuedKey(tokenID), "active", ttl)
	pipe.HSet(ctx, userTokensKey(userID), tokenID, expiresAt.Unix())
	pipe.Expire(ctx, userTokensKey(userID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return r.client.Set(ctx, issuedKey(tokenID), "revoked", r.ttl(expiresAt)).Err()
}

func (r *redisTokenRepository) RevokeAll(ctx context.Context, userID uint) error {
	tokens, err := r.client.HGetAll(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user tokens: %w", err)
	}

	pipe := r.client.TxPipeline()
	for tokenID, exp := range tokens {
		var unix int64
		if _, err := fmt.Sscanf(exp, "%d", &unix); err != nil {
			continue
		}
		pipe.Set(ctx, issuedKey(tokenID), "revoked", r.ttl(time.Unix(unix, 0)))
	}
	pipe.Del(ctx, userTokensKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	state, err := r.client.Get(ctx, issuedKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return state != "active", nil
}
