package repository

import (
	"context"
	"strings"
	"time"

	"github.com/cloud-next/onboarding/internal/models"
	"github.com/cloud-next/onboarding/internal/onboarding"
	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationFilter narrows List. Zero values disable a criterion; Page is
// 1-based and a zero PageSize returns every match.
type ApplicationFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// StatusChange is one application moved by ApplyTransition. Metadata, when
// set, replaces the stored metadata in the same update.
type StatusChange struct {
	AppID    string
	Metadata *onboarding.Metadata
}

type ApplicationRepository interface {
	BaseRepository[models.Application]
	List(ctx context.Context, f ApplicationFilter) ([]models.Application, int64, error)
	ListByIDs(ctx context.Context, appIDs []string) ([]models.Application, error)
	ListByStatus(ctx context.Context, status string) ([]models.Application, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	UpdateMetadata(ctx context.Context, appID string, m onboarding.Metadata) error
	// ApplyTransition moves every change whose application still holds
	// t.From to t.To and records a stage event for it, in one transaction.
	// It returns the IDs that moved; the rest were no longer eligible.
	ApplyTransition(ctx context.Context, t onboarding.Transition, changes []StatusChange) ([]string, error)
}

type applicationRepository struct {
	BaseRepository[models.Application]
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{BaseRepository: NewBaseRepository[models.Application](db, "app_id", "application"), db: db}
}

func (r *applicationRepository) List(ctx context.Context, f ApplicationFilter) ([]models.Application, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Application{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(app_id) LIKE ? OR LOWER(app_name) LIKE ? OR LOWER(owner) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, storeError(err, "count applications failed")
	}

	if f.PageSize > 0 {
		page := f.Page
		if page <= 0 {
			page = 1
		}
		q = q.Offset((page - 1) * f.PageSize).Limit(f.PageSize)
	}

	var out []models.Application
	if err := q.Order("app_id ASC").Find(&out).Error; err != nil {
		return nil, 0, storeError(err, "list applications failed")
	}
	return out, total, nil
}

func (r *applicationRepository) ListByIDs(ctx context.Context, appIDs []string) ([]models.Application, error) {
	var out []models.Application
	if len(appIDs) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("app_id IN ?", appIDs).Order("app_id ASC").Find(&out).Error; err != nil {
		return nil, storeError(err, "list applications by id failed")
	}
	return out, nil
}

func (r *applicationRepository) ListByStatus(ctx context.Context, status string) ([]models.Application, error) {
	var out []models.Application
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("app_id ASC").Find(&out).Error; err != nil {
		return nil, storeError(err, "list applications by status failed")
	}
	return out, nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError(err, "count applications by status failed")
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *applicationRepository) UpdateMetadata(ctx context.Context, appID string, m onboarding.Metadata) error {
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("app_id = ?", appID).
		Updates(map[string]any{
			"metadata":      datatypes.NewJSONType(m),
			"unity_project": m.UnityProjectName,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return storeError(res.Error, "update application metadata failed")
	}
	if res.RowsAffected == 0 {
		return appErr.Newf(appErr.CodeNotFound, "application %s not found", appID)
	}
	return nil
}

func (r *applicationRepository) ApplyTransition(ctx context.Context, t onboarding.Transition, changes []StatusChange) ([]string, error) {
	applied := []string{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			updates := map[string]any{"status": string(t.To), "updated_at": time.Now()}
			if c.Metadata != nil {
				updates["metadata"] = datatypes.NewJSONType(*c.Metadata)
				updates["unity_project"] = c.Metadata.UnityProjectName
			}
			res := tx.Model(&models.Application{}).
				Where("app_id = ? AND status = ?", c.AppID, string(t.From)).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			ev := models.StageEvent{
				AppID:      c.AppID,
				Action:     string(t.Action),
				FromStatus: string(t.From),
				ToStatus:   string(t.To),
				Kind:       models.EventTransitioned,
			}
			if err := tx.Create(&ev).Error; err != nil {
				return err
			}
			applied = append(applied, c.AppID)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "apply transition failed").WithMeta("action", string(t.Action))
	}
	return applied, nil
}
