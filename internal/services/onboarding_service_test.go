package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/cloud-next/onboarding/internal/models"
	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/cloud-next/onboarding/internal/queue/tasks"
	"github.com/cloud-next/onboarding/internal/repository"
	"github.com/cloud-next/onboarding/internal/repository/memory"
	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"github.com/cloud-next/onboarding/pkg/logger"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type mockQueue struct{ mock.Mock }

func (m *mockQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, query string) ([]onboarding.Candidate, bool, error) {
	args := m.Called(ctx, query)
	out, _ := args.Get(0).([]onboarding.Candidate)
	return out, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, query string, results []onboarding.Candidate) error {
	return m.Called(ctx, query, results).Error(0)
}

func newSeeded(t *testing.T, cache SearchCache, queue TaskEnqueuer) (OnboardingService, repository.Store) {
	t.Helper()
	store, _ := memory.NewStore()
	require.NoError(t, repository.SeedDemo(context.Background(), store))
	return NewOnboardingService(store, cache, queue), store
}

func validRequest(ids ...string) onboarding.InitializationRequest {
	rows := make([]onboarding.Row, 0, len(ids))
	for _, id := range ids {
		r := onboarding.NewRow(id, "", "")
		r.UnityProject = "proj-" + id
		r.AWSRegions = []string{"us-east-1"}
		r.DevNPAccount = "dev"
		r.QAAccount = "qa"
		r.Deployers = "alice, bob"
		rows = append(rows, r.Revalidated())
	}
	return onboarding.BuildRequest(rows)
}

func TestListApplicationsDefaultsAndFilters(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	ctx := context.Background()

	page, err := svc.ListApplications(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)

	page, err = svc.ListApplications(ctx, &ApplicationFilters{Status: "new", PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.Equal(t, []string{"APP002", "APP003"}, onboarding.AppIDs(page.Items))

	_, err = svc.ListApplications(ctx, &ApplicationFilters{Status: "retired"})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestGetStats(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.NotInitialized())
	assert.Equal(t, 0, stats.ByStatus[onboarding.StatusInitialized])
	assert.Equal(t, 1, stats.ByStatus[onboarding.StatusInProd])
}

func TestSearchCandidatesShortQuery(t *testing.T) {
	cache := &mockCache{}
	svc, _ := newSeeded(t, cache, nil)

	got, err := svc.SearchCandidates(context.Background(), " c ")
	require.NoError(t, err)
	assert.Empty(t, got)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSearchCandidatesUsesCache(t *testing.T) {
	ctx := context.Background()
	cached := []onboarding.Candidate{{AppID: "APP099", AppName: "Cached", Owner: "x"}}

	cache := &mockCache{}
	cache.On("Get", mock.Anything, "compass").Return(nil, false, nil).Once()
	cache.On("Set", mock.Anything, "compass", mock.MatchedBy(func(cs []onboarding.Candidate) bool { return len(cs) == 4 })).Return(nil).Once()
	cache.On("Get", mock.Anything, "billing").Return(cached, true, nil).Once()

	svc, _ := newSeeded(t, cache, nil)

	got, err := svc.SearchCandidates(ctx, "compass")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = svc.SearchCandidates(ctx, "billing")
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	cache.AssertExpectations(t)
}

func TestSearchCandidatesSurvivesCacheErrors(t *testing.T) {
	cache := &mockCache{}
	cache.On("Get", mock.Anything, "kim").Return(nil, false, errors.New("redis down"))
	cache.On("Set", mock.Anything, "kim", mock.Anything).Return(errors.New("redis down"))
	svc, _ := newSeeded(t, cache, nil)

	got, err := svc.SearchCandidates(context.Background(), "kim")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "APP007", got[0].AppID)
}

func TestAddApplications(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeeded(t, nil, nil)

	res, err := svc.AddApplications(ctx, []string{"APP011", " APP001", "APP011", "NEW-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"APP011", "NEW-1"}, res.Added)
	assert.Equal(t, []FailedApp{{AppID: "APP001", Reason: "already in the program"}}, res.Failed)

	app, err := svc.GetApplication(ctx, "APP011")
	require.NoError(t, err)
	assert.Equal(t, "Compass API", app.AppName)
	assert.Equal(t, "Sarah Lee", app.Owner)
	assert.Equal(t, onboarding.StatusNew, app.Status)

	app, err = svc.GetApplication(ctx, "NEW-1")
	require.NoError(t, err)
	assert.Equal(t, "NEW-1", app.AppName)

	_, err = svc.AddApplications(ctx, []string{" ", ""})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestGetApplicationsKeepsRequestOrder(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	apps, err := svc.GetApplications(context.Background(), []string{"APP004", "APP404", "APP001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"APP004", "APP001"}, onboarding.AppIDs(apps))

	_, err = svc.GetApplication(context.Background(), "APP404")
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestUpdateMetadataMergesPatch(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	ctx := context.Background()

	deployers := []string{"dana"}
	app, err := svc.UpdateMetadata(ctx, "APP003", onboarding.MetadataPatch{Deployers: deployers})
	require.NoError(t, err)
	assert.Equal(t, deployers, app.Metadata.Deployers)
	assert.Equal(t, "proj-notifications", *app.Metadata.UnityProjectName)
	assert.Equal(t, onboarding.StateValid, app.ValidationState())

	_, err = svc.UpdateMetadata(ctx, "APP404", onboarding.MetadataPatch{})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestSummarizeSelection(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	view, err := svc.SummarizeSelection(context.Background(), []string{"APP002", "APP003", "APP001"})
	require.NoError(t, err)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, "2 New, 1 In Dev", view.Description)
	assert.True(t, view.Actions[onboarding.ActionInitialize])
	assert.False(t, view.Actions[onboarding.ActionPrepareForDev])
	assert.True(t, view.Actions[onboarding.ActionPrepareForStage])
	assert.False(t, view.Actions[onboarding.ActionPrepareForProd])
}

func TestInitializeDraft(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	rows, err := svc.InitializeDraft(context.Background(), []string{"APP003", "APP001", "APP012", "X-9"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "APP003", rows[0].AppID)
	assert.True(t, rows[0].IsExisting)
	assert.Equal(t, "proj-notifications", rows[0].UnityProject)
	assert.Equal(t, onboarding.StateWarning, rows[0].ValidationState)

	assert.Equal(t, "Compass Dashboard", rows[1].AppName)
	assert.False(t, rows[1].IsExisting)
	assert.Equal(t, "X-9", rows[2].AppName)
	assert.Equal(t, onboarding.StateError, rows[2].ValidationState)
}

func TestSubmitInitialization(t *testing.T) {
	ctx := context.Background()
	queue := &mockQueue{}
	queue.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		return task.Type() == tasks.TypeProvision
	})).Return(&asynq.TaskInfo{}, nil).Once()

	svc, store := newSeeded(t, nil, queue)

	req := validRequest("APP002", "APP001", "APP011", "APP002")
	res, err := svc.SubmitInitialization(ctx, req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"APP002", "APP011"}, res.Initialized)
	assert.ElementsMatch(t, []FailedApp{
		{AppID: "APP002", Reason: "duplicate app ID in request"},
		{AppID: "APP001", Reason: "application is In Dev, expected New"},
	}, res.Failed)

	app, err := svc.GetApplication(ctx, "APP011")
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusInitialized, app.Status)
	assert.Equal(t, "Compass API", app.AppName)
	assert.Equal(t, []string{"alice", "bob"}, app.Metadata.Deployers)

	events, err := store.Events.ListByApp(ctx, "APP002")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTransitioned, events[0].Kind)
	queue.AssertExpectations(t)
}

type mockApps struct {
	mock.Mock
	repository.ApplicationRepository
}

func TestSubmitInitializationWithErrorRowTouchesNothing(t *testing.T) {
	apps := &mockApps{}
	svc := NewOnboardingService(repository.Store{Applications: apps}, nil, nil)

	req := validRequest("APP002", "APP003")
	req.Apps[1].Metadata.AWSRegions = []string{}

	_, err := svc.SubmitInitialization(context.Background(), req)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	var ae *appErr.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, []RowError{{AppID: "APP003", Missing: []string{onboarding.FieldAWSRegion}}}, ae.Meta["rows"])
	apps.AssertExpectations(t)
	assert.Empty(t, apps.Calls)
}

func TestSubmitInitializationEmpty(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	_, err := svc.SubmitInitialization(context.Background(), onboarding.InitializationRequest{})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestPrepareCandidatesIgnoresSelection(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	ctx := context.Background()

	got, err := svc.PrepareCandidates(ctx, onboarding.ActionPrepareForStage)
	require.NoError(t, err)
	assert.Equal(t, []string{"APP001"}, onboarding.AppIDs(got))

	got, err = svc.PrepareCandidates(ctx, onboarding.ActionPrepareForDev)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.PrepareCandidates(ctx, onboarding.ActionInitialize)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestAdvanceStageSkipsIneligible(t *testing.T) {
	ctx := context.Background()
	queue := &mockQueue{}
	queue.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, asynq.ErrTaskIDConflict).Once()
	svc, _ := newSeeded(t, nil, queue)

	res, err := svc.AdvanceStage(ctx, onboarding.ActionPrepareForStage, []string{"APP001", "APP002", "APP404"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"APP001"}, res.Advanced)
	assert.Equal(t, onboarding.StatusInStage, res.Status)

	app, err := svc.GetApplication(ctx, "APP002")
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusNew, app.Status)

	_, err = svc.AdvanceStage(ctx, onboarding.ActionPrepareForStage, []string{"APP001"}, false)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	queue.AssertExpectations(t)
}

func TestAdvanceStageProdNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeeded(t, nil, nil)

	_, err := svc.AdvanceStage(ctx, onboarding.ActionPrepareForProd, []string{"APP004"}, false)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	require.ErrorIs(t, err, onboarding.ErrConfirmationRequired)

	app, err := svc.GetApplication(ctx, "APP004")
	require.NoError(t, err)
	require.Equal(t, onboarding.StatusInStage, app.Status)

	res, err := svc.AdvanceStage(ctx, onboarding.ActionPrepareForProd, []string{"APP004"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"APP004"}, res.Advanced)

	events, err := svc.ListEvents(ctx, "APP004")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "in_prod", events[0].ToStatus)
}

func TestAdvanceStageRejectsInitialize(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	_, err := svc.AdvanceStage(context.Background(), onboarding.ActionInitialize, []string{"APP002"}, true)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = svc.AdvanceStage(context.Background(), onboarding.ActionPrepareForDev, nil, false)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestListEventsUnknownApp(t *testing.T) {
	svc, _ := newSeeded(t, nil, nil)
	_, err := svc.ListEvents(context.Background(), "APP404")
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}
