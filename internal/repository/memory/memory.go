// Package memory implements the repository interfaces in process. It backs
// the API when STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloud-next/onboarding/internal/models"
	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/cloud-next/onboarding/internal/repository"
	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DB is the shared state behind the three repositories. One mutex covers
// all tables so a transition and its stage events commit together.
type DB struct {
	mu         sync.RWMutex
	apps       map[string]models.Application
	candidates map[string]models.Candidate
	events     []models.StageEvent
	now        func() time.Time
}

func NewDB() *DB {
	return &DB{
		apps:       map[string]models.Application{},
		candidates: map[string]models.Candidate{},
		now:        time.Now,
	}
}

// NewStore returns a repository.Store over a fresh DB.
func NewStore() (repository.Store, *DB) {
	db := NewDB()
	return db.Store(), db
}

// Store exposes db through the repository interfaces.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Applications: &applicationRepository{db: db},
		Candidates:   &candidateRepository{db: db},
		Events:       &stageEventRepository{db: db},
	}
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

type applicationRepository struct{ db *DB }

var _ repository.ApplicationRepository = (*applicationRepository)(nil)

func (r *applicationRepository) Create(_ context.Context, obj *models.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.apps[obj.AppID]; ok {
		return appErr.New(appErr.CodeAlreadyExists, "application already exists")
	}
	now := r.db.now()
	if obj.Status == "" {
		obj.Status = string(onboarding.StatusNew)
	}
	obj.CreatedAt, obj.UpdatedAt = now, now
	r.db.apps[obj.AppID] = *obj
	return nil
}

func (r *applicationRepository) GetByKey(_ context.Context, key any, dest *models.Application) error {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	a, ok := r.db.apps[fmt.Sprint(key)]
	if !ok {
		return appErr.Newf(appErr.CodeNotFound, "application %v not found", key)
	}
	*dest = a
	return nil
}

func (r *applicationRepository) Update(_ context.Context, obj *models.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	obj.UpdatedAt = r.db.now()
	r.db.apps[obj.AppID] = *obj
	return nil
}

func (r *applicationRepository) sorted(keep func(models.Application) bool) []models.Application {
	out := []models.Application{}
	for _, a := range r.db.apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out
}

func (r *applicationRepository) List(_ context.Context, f repository.ApplicationFilter) ([]models.Application, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Search))
	all := r.sorted(func(a models.Application) bool {
		if f.Status != "" && a.Status != f.Status {
			return false
		}
		return q == "" || matches(q, a.AppID, a.AppName, a.Owner)
	})
	total := int64(len(all))
	if f.PageSize <= 0 {
		return all, total, nil
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * f.PageSize
	if start >= len(all) {
		return []models.Application{}, total, nil
	}
	end := start + f.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *applicationRepository) ListByIDs(_ context.Context, appIDs []string) ([]models.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	want := make(map[string]struct{}, len(appIDs))
	for _, id := range appIDs {
		want[id] = struct{}{}
	}
	return r.sorted(func(a models.Application) bool {
		_, ok := want[a.AppID]
		return ok
	}), nil
}

func (r *applicationRepository) ListByStatus(_ context.Context, status string) ([]models.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.sorted(func(a models.Application) bool { return a.Status == status }), nil
}

func (r *applicationRepository) CountByStatus(context.Context) (map[string]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := map[string]int64{}
	for _, a := range r.db.apps {
		out[a.Status]++
	}
	return out, nil
}

func (r *applicationRepository) UpdateMetadata(_ context.Context, appID string, m onboarding.Metadata) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.apps[appID]
	if !ok {
		return appErr.Newf(appErr.CodeNotFound, "application %s not found", appID)
	}
	a.Metadata = datatypes.NewJSONType(m)
	a.UnityProject = m.UnityProjectName
	a.UpdatedAt = r.db.now()
	r.db.apps[appID] = a
	return nil
}

func (r *applicationRepository) ApplyTransition(_ context.Context, t onboarding.Transition, changes []repository.StatusChange) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	applied := []string{}
	now := r.db.now()
	for _, c := range changes {
		a, ok := r.db.apps[c.AppID]
		if !ok || a.Status != string(t.From) {
			continue
		}
		a.Status = string(t.To)
		if c.Metadata != nil {
			a.Metadata = datatypes.NewJSONType(*c.Metadata)
			a.UnityProject = c.Metadata.UnityProjectName
		}
		a.UpdatedAt = now
		r.db.apps[c.AppID] = a
		r.db.events = append(r.db.events, models.StageEvent{
			ID:         uuid.New(),
			AppID:      c.AppID,
			Action:     string(t.Action),
			FromStatus: string(t.From),
			ToStatus:   string(t.To),
			Kind:       models.EventTransitioned,
			CreatedAt:  now,
		})
		applied = append(applied, c.AppID)
	}
	return applied, nil
}

type candidateRepository struct{ db *DB }

var _ repository.CandidateRepository = (*candidateRepository)(nil)

func (r *candidateRepository) Create(_ context.Context, obj *models.Candidate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.candidates[obj.AppID]; ok {
		return appErr.New(appErr.CodeAlreadyExists, "candidate already exists")
	}
	r.db.candidates[obj.AppID] = *obj
	return nil
}

func (r *candidateRepository) GetByKey(_ context.Context, key any, dest *models.Candidate) error {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.candidates[fmt.Sprint(key)]
	if !ok {
		return appErr.Newf(appErr.CodeNotFound, "candidate %v not found", key)
	}
	*dest = c
	return nil
}

func (r *candidateRepository) Update(_ context.Context, obj *models.Candidate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.candidates[obj.AppID] = *obj
	return nil
}

func (r *candidateRepository) Search(_ context.Context, query string, limit int) ([]models.Candidate, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Candidate{}
	for _, c := range r.db.candidates {
		if matches(q, c.AppID, c.AppName, c.Owner) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *candidateRepository) ListByIDs(_ context.Context, appIDs []string) ([]models.Candidate, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.Candidate{}
	for _, id := range appIDs {
		if c, ok := r.db.candidates[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *candidateRepository) Upsert(_ context.Context, cs []models.Candidate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range cs {
		if _, ok := r.db.candidates[c.AppID]; !ok {
			r.db.candidates[c.AppID] = c
		}
	}
	return nil
}

type stageEventRepository struct{ db *DB }

var _ repository.StageEventRepository = (*stageEventRepository)(nil)

func (r *stageEventRepository) Create(_ context.Context, obj *models.StageEvent) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if obj.ID == uuid.Nil {
		obj.ID = uuid.New()
	}
	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = r.db.now()
	}
	r.db.events = append(r.db.events, *obj)
	return nil
}

func (r *stageEventRepository) GetByKey(_ context.Context, key any, dest *models.StageEvent) error {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, e := range r.db.events {
		if e.ID.String() == fmt.Sprint(key) {
			*dest = e
			return nil
		}
	}
	return appErr.Newf(appErr.CodeNotFound, "stage event %v not found", key)
}

func (r *stageEventRepository) Update(_ context.Context, obj *models.StageEvent) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, e := range r.db.events {
		if e.ID == obj.ID {
			r.db.events[i] = *obj
			return nil
		}
	}
	return appErr.Newf(appErr.CodeNotFound, "stage event %s not found", obj.ID)
}

func (r *stageEventRepository) ListByApp(_ context.Context, appID string) ([]models.StageEvent, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []models.StageEvent{}
	for _, e := range r.db.events {
		if e.AppID == appID {
			out = append(out, e)
		}
	}
	return out, nil
}
