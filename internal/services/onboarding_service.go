package services

import (
	"context"
	"strings"

	"github.com/cloud-next/onboarding/internal/metrics"
	"github.com/cloud-next/onboarding/internal/models"
	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/cloud-next/onboarding/internal/repository"
	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"github.com/cloud-next/onboarding/pkg/logger"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Onboarding service interface and DTOs
type OnboardingService interface {
	// Program views
	ListApplications(ctx context.Context, filters *ApplicationFilters) (*ApplicationPage, error)
	GetStats(ctx context.Context) (onboarding.Stats, error)
	GetApplication(ctx context.Context, appID string) (*onboarding.Application, error)
	GetApplications(ctx context.Context, appIDs []string) ([]onboarding.Application, error)
	ListEvents(ctx context.Context, appID string) ([]models.StageEvent, error)

	// Directory and membership
	SearchCandidates(ctx context.Context, query string) ([]onboarding.Candidate, error)
	AddApplications(ctx context.Context, appIDs []string) (*AddResult, error)
	UpdateMetadata(ctx context.Context, appID string, patch onboarding.MetadataPatch) (*onboarding.Application, error)

	// Bulk actions
	SummarizeSelection(ctx context.Context, appIDs []string) (*SelectionView, error)
	InitializeDraft(ctx context.Context, appIDs []string) ([]onboarding.Row, error)
	SubmitInitialization(ctx context.Context, req onboarding.InitializationRequest) (*InitializationResult, error)
	PrepareCandidates(ctx context.Context, action onboarding.Action) ([]onboarding.Application, error)
	AdvanceStage(ctx context.Context, action onboarding.Action, appIDs []string, confirmed bool) (*AdvanceResult, error)
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MinSearchLength is the shortest query sent to the directory.
	MinSearchLength = 2
	searchLimit     = 50
)

type ApplicationFilters struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

type ApplicationPage struct {
	Items    []onboarding.Application
	Total    int64
	Page     int
	PageSize int
}

// FailedApp reports one application a batch could not process.
type FailedApp struct {
	AppID  string `json:"appId"`
	Reason string `json:"reason"`
}

type AddResult struct {
	Added  []string    `json:"added"`
	Failed []FailedApp `json:"failed"`
}

type InitializationResult struct {
	Initialized []string    `json:"initialized"`
	Failed      []FailedApp `json:"failed"`
}

type AdvanceResult struct {
	Action   onboarding.Action `json:"action"`
	Status   onboarding.Status `json:"status"`
	Advanced []string          `json:"advanced"`
}

// SelectionView is the bulk-action bar state for a selection.
type SelectionView struct {
	onboarding.Summary
	Actions     map[onboarding.Action]bool `json:"actions"`
	Description string                     `json:"description"`
}

// SearchCache caches directory search results. Implemented by cache.SearchCache.
type SearchCache interface {
	Get(ctx context.Context, query string) ([]onboarding.Candidate, bool, error)
	Set(ctx context.Context, query string, results []onboarding.Candidate) error
}

// TaskEnqueuer is the subset of *asynq.Client the service needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type onboardingService struct {
	apps       repository.ApplicationRepository
	candidates repository.CandidateRepository
	events     repository.StageEventRepository
	cache      SearchCache
	queue      TaskEnqueuer
}

// NewOnboardingService wires the service. cache and queue may be nil, in
// which case searches always hit the store and no provisioning tasks are
// enqueued.
func NewOnboardingService(store repository.Store, cache SearchCache, queue TaskEnqueuer) OnboardingService {
	return &onboardingService{
		apps:       store.Applications,
		candidates: store.Candidates,
		events:     store.Events,
		cache:      cache,
		queue:      queue,
	}
}

var _ OnboardingService = (*onboardingService)(nil)

func (s *onboardingService) ListApplications(ctx context.Context, filters *ApplicationFilters) (*ApplicationPage, error) {
	f := ApplicationFilters{}
	if filters != nil {
		f = *filters
	}
	if f.Status != "" {
		if _, err := onboarding.ParseStatus(f.Status); err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid status filter")
		}
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}

	rows, total, err := s.apps.List(ctx, repository.ApplicationFilter{
		Status:   f.Status,
		Search:   f.Search,
		Page:     f.Page,
		PageSize: f.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &ApplicationPage{Items: models.ApplicationsToDomain(rows), Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (s *onboardingService) GetStats(ctx context.Context) (onboarding.Stats, error) {
	counts, err := s.apps.CountByStatus(ctx)
	if err != nil {
		return onboarding.Stats{}, err
	}
	stats := onboarding.NewStats()
	for status, n := range counts {
		st, err := onboarding.ParseStatus(status)
		if err != nil {
			logger.FromContext(ctx).Warn("application with unknown status", zap.String("status", status), zap.Int64("count", n))
			continue
		}
		stats.ByStatus[st] = int(n)
		stats.Total += int(n)
	}
	return stats, nil
}

func (s *onboardingService) GetApplication(ctx context.Context, appID string) (*onboarding.Application, error) {
	var row models.Application
	if err := s.apps.GetByKey(ctx, appID, &row); err != nil {
		return nil, err
	}
	app := row.ToDomain()
	return &app, nil
}

// GetApplications returns the known applications among appIDs, in request
// order. Unknown IDs are skipped.
func (s *onboardingService) GetApplications(ctx context.Context, appIDs []string) ([]onboarding.Application, error) {
	byID, err := s.lookup(ctx, appIDs)
	if err != nil {
		return nil, err
	}
	out := make([]onboarding.Application, 0, len(byID))
	for _, id := range dedupe(appIDs) {
		if app, ok := byID[id]; ok {
			out = append(out, app)
		}
	}
	return out, nil
}

func (s *onboardingService) ListEvents(ctx context.Context, appID string) ([]models.StageEvent, error) {
	var row models.Application
	if err := s.apps.GetByKey(ctx, appID, &row); err != nil {
		return nil, err
	}
	return s.events.ListByApp(ctx, appID)
}

// SearchCandidates matches the directory by ID, name or owner. Queries
// shorter than MinSearchLength return no results without a lookup.
func (s *onboardingService) SearchCandidates(ctx context.Context, query string) ([]onboarding.Candidate, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < MinSearchLength {
		return []onboarding.Candidate{}, nil
	}
	log := logger.FromContext(ctx)

	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, q)
		switch {
		case err != nil:
			metrics.RecordSearchCache("error")
			log.Warn("search cache read failed", zap.String("query", q), zap.Error(err))
		case hit:
			metrics.RecordSearchCache("hit")
			return cached, nil
		default:
			metrics.RecordSearchCache("miss")
		}
	}

	rows, err := s.candidates.Search(ctx, q, searchLimit)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "candidate search failed")
	}
	out := make([]onboarding.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, q, out); err != nil {
			log.Warn("search cache write failed", zap.String("query", q), zap.Error(err))
		}
	}
	return out, nil
}

// AddApplications enrols new applications with status new. Names and owners
// come from the directory when the ID is known there. IDs already in the
// program are reported as failed.
func (s *onboardingService) AddApplications(ctx context.Context, appIDs []string) (*AddResult, error) {
	ids := dedupe(appIDs)
	if len(ids) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "no app IDs provided")
	}
	log := logger.FromContext(ctx)
	log.Info("add applications", zap.Strings("app_ids", ids))

	res := &AddResult{Added: []string{}, Failed: []FailedApp{}}
	dir, err := s.directory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := s.enrol(ctx, id, dir); err != nil {
			res.Failed = append(res.Failed, FailedApp{AppID: id, Reason: failureReason(err)})
			continue
		}
		res.Added = append(res.Added, id)
	}

	log.Info("applications added", zap.Int("added", len(res.Added)), zap.Int("failed", len(res.Failed)))
	return res, nil
}

func (s *onboardingService) UpdateMetadata(ctx context.Context, appID string, patch onboarding.MetadataPatch) (*onboarding.Application, error) {
	logger.FromContext(ctx).Info("update metadata", zap.String("app_id", appID))

	var row models.Application
	if err := s.apps.GetByKey(ctx, appID, &row); err != nil {
		return nil, err
	}
	merged := row.Metadata.Data().Merge(patch)
	if err := s.apps.UpdateMetadata(ctx, appID, merged); err != nil {
		return nil, err
	}
	return s.GetApplication(ctx, appID)
}

// SummarizeSelection reports per-status counts and enabled actions for the
// selected applications. Unknown IDs are ignored.
func (s *onboardingService) SummarizeSelection(ctx context.Context, appIDs []string) (*SelectionView, error) {
	apps, err := s.GetApplications(ctx, appIDs)
	if err != nil {
		return nil, err
	}
	sum := onboarding.NewSelection(apps...).Summary()
	return &SelectionView{Summary: sum, Actions: sum.Enabled(), Description: sum.Describe()}, nil
}

// enrol creates a single application in the new status.
func (s *onboardingService) enrol(ctx context.Context, appID string, dir map[string]models.Candidate) error {
	row := &models.Application{
		AppID:                appID,
		AppName:              appID,
		IsCloudNextCandidate: true,
		Status:               string(onboarding.StatusNew),
	}
	if c, ok := dir[appID]; ok {
		row.AppName = c.AppName
		row.Owner = c.Owner
	}
	return s.apps.Create(ctx, row)
}

func (s *onboardingService) directory(ctx context.Context, appIDs []string) (map[string]models.Candidate, error) {
	cs, err := s.candidates.ListByIDs(ctx, appIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Candidate, len(cs))
	for _, c := range cs {
		out[c.AppID] = c
	}
	return out, nil
}

func (s *onboardingService) lookup(ctx context.Context, appIDs []string) (map[string]onboarding.Application, error) {
	rows, err := s.apps.ListByIDs(ctx, dedupe(appIDs))
	if err != nil {
		return nil, err
	}
	out := make(map[string]onboarding.Application, len(rows))
	for _, r := range rows {
		out[r.AppID] = r.ToDomain()
	}
	return out, nil
}

func failureReason(err error) string {
	switch appErr.CodeOf(err) {
	case appErr.CodeAlreadyExists:
		return "already in the program"
	case appErr.CodeNotFound:
		return "not found"
	default:
		return err.Error()
	}
}

// dedupe trims IDs, drops empties and keeps first occurrences.
func dedupe(ids []string) []string {
	return onboarding.ParseAppIDs(strings.Join(ids, "\n"))
}
