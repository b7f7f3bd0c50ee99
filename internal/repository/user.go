package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"Reformly/internal/model"
	"Reformly/pkg/errors"
	"Reformly/storage/database"
)

// UserRepository 用户表读写
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository db 为 nil 时使用全局连接
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) conn(ctx context.Context) *gorm.DB {
	db := r.db
	if db == nil {
		db = database.DB()
	}
	return db.WithContext(ctx)
}

func (r *UserRepository) FindByEmailHash(ctx context.Context, hash string) (*model.User, error) {
	return r.first(ctx, "email_hash = ?", hash)
}

func (r *UserRepository) FindByGoogleUID(ctx context.Context, uid string) (*model.User, error) {
	return r.first(ctx, "google_uid = ?", uid)
}

// FindByPublicID API 中对外暴露的用户 id 是 public_id
func (r *UserRepository) FindByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	return r.first(ctx, "public_id = ?", publicID)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.conn(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.UserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.conn(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	if err := r.conn(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
