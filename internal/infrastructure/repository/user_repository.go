package repository

import (
	"context"
	"errors"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	domainRepo "github.com/flightworks/aeroops-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return conn(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).
		Preload("Roles.Permissions").
		First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).
		Preload("Roles.Permissions").
		First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return conn(ctx, r.db).Save(user).Error
}

func (r *userRepository) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	db := conn(ctx, r.db)

	var role entity.Role
	if err := db.First(&role, "name = ?", roleName).Error; err != nil {
		return err
	}

	var user entity.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return db.Model(&user).Association("Roles").Append(&role)
}
