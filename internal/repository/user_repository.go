package repository

import (
	"context"
	"errors"
	"strings"

	"taskup/internal/model"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no user has the given email
var ErrUserNotFound = errors.New("user not found")

// UserRepository reads users. Accounts are provisioned outside the API.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks a user up by email, ignoring case and surrounding spaces
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := conn(ctx, r.db).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
