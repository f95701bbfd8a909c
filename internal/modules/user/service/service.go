package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/softdesk/internal/entity"
	contributorRepo "anoa.com/softdesk/internal/modules/contributor/repository"
	"anoa.com/softdesk/internal/modules/user/dto"
	"anoa.com/softdesk/internal/modules/user/repository"
	"anoa.com/softdesk/pkg/apperror"
	"anoa.com/softdesk/pkg/logger"
	"anoa.com/softdesk/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)

type AuthService interface {
	Signup(ctx context.Context, input dto.SignupInput) (*entity.User, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	LogoutAll(ctx context.Context, userID uint) error
	Me(ctx context.Context, userID uint) (*entity.User, error)
	DeleteAccount(ctx context.Context, userID uint) error
}

type authService struct {
	repo         repository.UserRepository
	tokens       repository.TokenRepository
	contributors contributorRepo.ContributorRepository
	tokenManager *token.Manager
	bcryptCost   int
}

func NewAuthService(repo repository.UserRepository, tokens repository.TokenRepository, contributors contributorRepo.ContributorRepository, tokenManager *token.Manager) AuthService {
	return &authService{
		repo:         repo,
		tokens:       tokens,
		contributors: contributors,
		tokenManager: tokenManager,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

func (s *authService) Signup(ctx context.Context, input dto.SignupInput) (*entity.User, error) {
	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperror.NewValidationError("username", "A user with that username already exists.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.NewValidationError("email", "A user with that email already exists.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username or email already taken: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("user signed up")
	return user, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(ctx, user)
}

func (s *authService) buildAuthResponse(ctx context.Context, user *entity.User) (*dto.AuthResponse, error) {
	signed, claims, err := s.tokenManager.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Track(ctx, user.ID, claims.TokenID, claims.ExpiresAt); err != nil {
		return nil, fmt.Errorf("track token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenManager.TTL().Seconds()),
		User:        user,
	}, nil
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.tokens.Revoke(ctx, tokenID, expiresAt)
}

func (s *authService) LogoutAll(ctx context.Context, userID uint) error {
	return s.tokens.RevokeAll(ctx, userID)
}

func (s *authService) Me(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// DeleteAccount refuses while the user is the creator of a project: the creator row of
// a live project cannot go away. The store enforces the same rule inside the delete,
// the lookup here only names the project in the message.
func (s *authService) DeleteAccount(ctx context.Context, userID uint) error {
	memberships, err := s.contributors.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if m.IsCreator() {
			return fmt.Errorf("delete project %d before deleting your account: %w", m.ProjectID, apperror.ErrConflict)
		}
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrOwnsProject):
			return fmt.Errorf("delete your projects before deleting your account: %w", apperror.ErrConflict)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		logger.Log.WithField("user_id", userID).Warnf("failed to revoke tokens of deleted user: %v", err)
	}

	logger.Log.WithField("user_id", userID).Info("account deleted")
	return nil
}
