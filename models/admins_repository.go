package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrAdminNotFound is returned when no admin matches the lookup.
var ErrAdminNotFound = errors.New("admin not found")

type AdminsRepository struct {
	db *gorm.DB
}

func NewAdminsRepository(db *gorm.DB) *AdminsRepository {
	return &AdminsRepository{db: db}
}

func (r *AdminsRepository) GetByID(ctx context.Context, id string) (*Admin, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AdminsRepository) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *AdminsRepository) first(ctx context.Context, cond string, arg any) (*Admin, error) {
	var admin Admin
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// CreateAdmin stores a new admin. The caller hashes the password beforehand.
func (r *AdminsRepository) CreateAdmin(ctx context.Context, admin *Admin) error {
	return translateError(r.db.WithContext(ctx).Create(admin).Error)
}

// UpdatePassword replaces the stored digest for username.
func (r *AdminsRepository) UpdatePassword(ctx context.Context, username, digest string) error {
	res := r.db.WithContext(ctx).Model(&Admin{}).Where("username = ?", username).Update("password", digest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}
