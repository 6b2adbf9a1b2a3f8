// Package repository persists onboarding applications, the candidate
// directory and stage history. The gorm implementations live here; package
// memory provides an in-process implementation of the same interfaces.
package repository

import "gorm.io/gorm"

// Store groups the repositories a service needs.
type Store struct {
	Applications ApplicationRepository
	Candidates   CandidateRepository
	Events       StageEventRepository
}

// NewGormStore wires the gorm repositories over one connection.
func NewGormStore(db *gorm.DB) Store {
	return Store{
		Applications: NewApplicationRepository(db),
		Candidates:   NewCandidateRepository(db),
		Events:       NewStageEventRepository(db),
	}
}
