package models

import "github.com/cloud-next/onboarding/internal/onboarding"

// Candidate is an entry of the application directory searched when adding
// applications to the program.
type Candidate struct {
	AppID   string `gorm:"type:varchar(64);primaryKey" json:"app_id"`
	AppName string `gorm:"type:varchar(255);not null;index" json:"app_name"`
	Owner   string `gorm:"type:varchar(255);index" json:"owner"`
}

func (c Candidate) ToDomain() onboarding.Candidate {
	return onboarding.Candidate{AppID: c.AppID, AppName: c.AppName, Owner: c.Owner}
}
