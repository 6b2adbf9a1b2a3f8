package models

import (
	"time"

	"github.com/cloud-next/onboarding/internal/onboarding"
	"gorm.io/datatypes"
)

// Application is a row of the onboarding program.
type Application struct {
	AppID                string                                 `gorm:"type:varchar(64);primaryKey" json:"app_id"`
	AppName              string                                 `gorm:"type:varchar(255);not null;index" json:"app_name" validate:"required"`
	Owner                string                                 `gorm:"type:varchar(255);index" json:"owner"`
	UnityProject         *string                                `gorm:"type:varchar(255)" json:"unity_project"`
	LifecycleStage       string                                 `gorm:"type:varchar(64)" json:"lifecycle_stage"`
	IsCloudNextCandidate bool                                   `gorm:"not null;default:true" json:"is_cloud_next_candidate"`
	Status               string                                 `gorm:"type:varchar(32);index;not null;default:new" json:"status" validate:"required,oneof=new initialized in_dev in_stage in_prod"`
	Metadata             datatypes.JSONType[onboarding.Metadata] `gorm:"type:jsonb" json:"metadata"`
	CreatedAt            time.Time                              `json:"created_at"`
	UpdatedAt            time.Time                              `json:"updated_at"`
}

// ToDomain converts the row into the domain type.
func (a Application) ToDomain() onboarding.Application {
	return onboarding.Application{
		AppID:                a.AppID,
		AppName:              a.AppName,
		Owner:                a.Owner,
		UnityProject:         a.UnityProject,
		LifecycleStage:       a.LifecycleStage,
		IsCloudNextCandidate: a.IsCloudNextCandidate,
		Status:               onboarding.Status(a.Status),
		Metadata:             a.Metadata.Data(),
	}
}

// ApplicationFromDomain builds a row from the domain type.
func ApplicationFromDomain(app onboarding.Application) Application {
	return Application{
		AppID:                app.AppID,
		AppName:              app.AppName,
		Owner:                app.Owner,
		UnityProject:         app.UnityProject,
		LifecycleStage:       app.LifecycleStage,
		IsCloudNextCandidate: app.IsCloudNextCandidate,
		Status:               string(app.Status),
		Metadata:             datatypes.NewJSONType(app.Metadata),
	}
}

// ApplicationsToDomain converts a slice of rows.
func ApplicationsToDomain(rows []Application) []onboarding.Application {
	out := make([]onboarding.Application, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}
	return out
}
