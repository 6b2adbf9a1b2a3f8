package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event kinds recorded in the stage history.
const (
	EventTransitioned = "transitioned"
	EventProvisioned  = "provisioned"
)

// StageEvent records one step of an application's lifecycle history.
type StageEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppID      string    `gorm:"type:varchar(64);index;not null" json:"app_id" validate:"required"`
	Action     string    `gorm:"type:varchar(32);not null" json:"action"`
	FromStatus string    `gorm:"type:varchar(32)" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(32);not null" json:"to_status"`
	Kind       string    `gorm:"type:varchar(32);not null;index" json:"kind" validate:"required,oneof=transitioned provisioned"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (e *StageEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
