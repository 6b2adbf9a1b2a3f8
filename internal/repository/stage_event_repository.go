package repository

import (
	"context"

	"github.com/cloud-next/onboarding/internal/models"
	"gorm.io/gorm"
)

type StageEventRepository interface {
	BaseRepository[models.StageEvent]
	ListByApp(ctx context.Context, appID string) ([]models.StageEvent, error)
}

type stageEventRepository struct {
	BaseRepository[models.StageEvent]
	db *gorm.DB
}

func NewStageEventRepository(db *gorm.DB) StageEventRepository {
	return &stageEventRepository{BaseRepository: NewBaseRepository[models.StageEvent](db, "id", "stage event"), db: db}
}

func (r *stageEventRepository) ListByApp(ctx context.Context, appID string) ([]models.StageEvent, error) {
	var out []models.StageEvent
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, storeError(err, "list stage events failed")
	}
	return out, nil
}
