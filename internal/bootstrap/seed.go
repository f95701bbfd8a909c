package bootstrap

import (
	"context"
	"errors"
	"strings"

	"anoa.com/softdesk/internal/entity"
	userRepo "anoa.com/softdesk/internal/modules/user/repository"
	"anoa.com/softdesk/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.IssuedToken{},
		&entity.Project{},
		&entity.Contributor{},
		&entity.Issue{},
		&entity.Comment{},
	)
}

// SeedUser creates a login for the given email unless one already exists. The
// username is the local part of the address.
func SeedUser(ctx context.Context, users userRepo.UserRepository, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		logger.Log.WithField("email", email).Info("seed user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	username, _, _ := strings.Cut(email, "@")
	user := &entity.User{
		Username:     username,
		Email:        email,
		FirstName:    "Demo",
		LastName:     "User",
		PasswordHash: string(hashedPasswordBytes),
	}

	if err := users.Create(ctx, user); err != nil {
		return err
	}

	logger.Log.WithFields(logger.Fields{"user_id": user.ID, "email": email}).Info("seed user created")
	return nil
}
