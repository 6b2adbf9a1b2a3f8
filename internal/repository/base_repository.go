package repository

import (
	"context"
	"errors"
	"fmt"

	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"gorm.io/gorm"
)

// BaseRepository defines the operations shared by every table keyed by a
// single column.
type BaseRepository[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByKey(ctx context.Context, key any, dest *T) error
	Update(ctx context.Context, obj *T) error
}

type baseRepository[T any] struct {
	db     *gorm.DB
	keyCol string
	entity string
}

// NewBaseRepository builds a BaseRepository for T. keyCol is the primary key
// column and entity the name used in error messages.
func NewBaseRepository[T any](db *gorm.DB, keyCol, entity string) BaseRepository[T] {
	return &baseRepository[T]{db: db, keyCol: keyCol, entity: entity}
}

func (r *baseRepository[T]) Create(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appErr.Wrap(err, appErr.CodeAlreadyExists, r.entity+" already exists")
		}
		return storeError(err, "create "+r.entity+" failed")
	}
	return nil
}

func (r *baseRepository[T]) GetByKey(ctx context.Context, key any, dest *T) error {
	if err := r.db.WithContext(ctx).First(dest, r.keyCol+" = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.New(appErr.CodeNotFound, fmt.Sprintf("%s %v not found", r.entity, key))
		}
		return storeError(err, "get "+r.entity+" failed")
	}
	return nil
}

func (r *baseRepository[T]) Update(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Save(obj).Error; err != nil {
		return storeError(err, "update "+r.entity+" failed")
	}
	return nil
}
