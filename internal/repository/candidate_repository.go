package repository

import (
	"context"
	"strings"

	"github.com/cloud-next/onboarding/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CandidateRepository interface {
	BaseRepository[models.Candidate]
	// Search matches query case-insensitively against ID, name and owner.
	Search(ctx context.Context, query string, limit int) ([]models.Candidate, error)
	ListByIDs(ctx context.Context, appIDs []string) ([]models.Candidate, error)
	// Upsert inserts candidates, leaving existing IDs untouched.
	Upsert(ctx context.Context, cs []models.Candidate) error
}

type candidateRepository struct {
	BaseRepository[models.Candidate]
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{BaseRepository: NewBaseRepository[models.Candidate](db, "app_id", "candidate"), db: db}
}

func (r *candidateRepository) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := r.db.WithContext(ctx).
		Where("LOWER(app_id) LIKE ? OR LOWER(app_name) LIKE ? OR LOWER(owner) LIKE ?", like, like, like).
		Order("app_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Candidate
	if err := q.Find(&out).Error; err != nil {
		return nil, storeError(err, "search candidates failed")
	}
	return out, nil
}

func (r *candidateRepository) ListByIDs(ctx context.Context, appIDs []string) ([]models.Candidate, error) {
	var out []models.Candidate
	if len(appIDs) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("app_id IN ?", appIDs).Find(&out).Error; err != nil {
		return nil, storeError(err, "list candidates failed")
	}
	return out, nil
}

func (r *candidateRepository) Upsert(ctx context.Context, cs []models.Candidate) error {
	if len(cs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cs).Error; err != nil {
		return storeError(err, "upsert candidates failed")
	}
	return nil
}
