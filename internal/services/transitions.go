package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloud-next/onboarding/internal/metrics"
	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/cloud-next/onboarding/internal/queue/tasks"
	"github.com/cloud-next/onboarding/internal/repository"
	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"github.com/cloud-next/onboarding/pkg/logger"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RowError describes a row that blocks an initialization batch.
type RowError struct {
	AppID   string   `json:"appId"`
	Missing []string `json:"missing"`
}

// InitializeDraft builds the rows the initialize form opens with. Selected
// applications in the new status are seeded from their stored metadata,
// IDs not yet in the program get an empty row, and everything else is left
// out.
func (s *onboardingService) InitializeDraft(ctx context.Context, appIDs []string) ([]onboarding.Row, error) {
	ids := dedupe(appIDs)
	known, err := s.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	selected := make([]onboarding.Application, 0, len(known))
	var unknown []string
	for _, id := range ids {
		if app, ok := known[id]; ok {
			selected = append(selected, app)
			continue
		}
		unknown = append(unknown, id)
	}

	rows := onboarding.InitializeSeed(selected)
	if len(unknown) == 0 {
		return rows, nil
	}
	dir, err := s.directory(ctx, unknown)
	if err != nil {
		return nil, err
	}
	for _, id := range unknown {
		c := dir[id]
		rows = append(rows, onboarding.NewRow(id, c.AppName, c.Owner))
	}
	return rows, nil
}

// SubmitInitialization moves a batch from new to initialized and stores each
// row's metadata. A batch with any row in the error state is rejected before
// anything is written. IDs that are not in the program yet are enrolled
// first.
func (s *onboardingService) SubmitInitialization(ctx context.Context, req onboarding.InitializationRequest) (*InitializationResult, error) {
	log := logger.FromContext(ctx)
	if len(req.Apps) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "initialization request has no apps")
	}

	rows := req.Rows()
	if !onboarding.CanSubmit(rows) {
		var blocked []RowError
		for _, r := range rows {
			if r.ValidationState.Blocks() {
				blocked = append(blocked, RowError{AppID: r.AppID, Missing: r.MissingFields()})
			}
		}
		log.Info("initialization rejected", zap.Int("rows", len(rows)), zap.Int("blocked", len(blocked)))
		return nil, appErr.Newf(appErr.CodeInvalid, "%d of %d rows are missing required fields", len(blocked), len(rows)).
			WithMeta("rows", blocked)
	}

	res := &InitializationResult{Initialized: []string{}, Failed: []FailedApp{}}
	seen := map[string]bool{}
	var ordered []onboarding.Row
	for _, r := range rows {
		switch {
		case r.AppID == "":
			res.Failed = append(res.Failed, FailedApp{Reason: "missing app ID"})
		case seen[r.AppID]:
			res.Failed = append(res.Failed, FailedApp{AppID: r.AppID, Reason: "duplicate app ID in request"})
		default:
			seen[r.AppID] = true
			ordered = append(ordered, r)
		}
	}

	ids := make([]string, 0, len(ordered))
	for _, r := range ordered {
		ids = append(ids, r.AppID)
	}
	known, err := s.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	dir, err := s.directory(ctx, missing)
	if err != nil {
		return nil, err
	}

	t, _ := onboarding.TransitionFor(onboarding.ActionInitialize)
	changes := make([]repository.StatusChange, 0, len(ordered))
	for _, r := range ordered {
		app, ok := known[r.AppID]
		if !ok {
			if err := s.enrol(ctx, r.AppID, dir); err != nil && !appErr.IsCode(err, appErr.CodeAlreadyExists) {
				res.Failed = append(res.Failed, FailedApp{AppID: r.AppID, Reason: failureReason(err)})
				continue
			}
		} else if app.Status != t.From {
			res.Failed = append(res.Failed, FailedApp{AppID: r.AppID, Reason: ineligibleReason(app.Status, t.From)})
			continue
		}
		m := r.Metadata()
		changes = append(changes, repository.StatusChange{AppID: r.AppID, Metadata: &m})
	}

	applied, err := s.applyTransition(ctx, t, changes)
	if err != nil {
		return nil, err
	}
	res.Initialized = applied
	res.Failed = append(res.Failed, notApplied(changes, applied)...)

	log.Info("initialization submitted", zap.Int("initialized", len(res.Initialized)), zap.Int("failed", len(res.Failed)))
	return res, nil
}

// PrepareCandidates lists every application eligible for a prepare action.
// The prepare forms are seeded from this list rather than from the
// selection.
func (s *onboardingService) PrepareCandidates(ctx context.Context, action onboarding.Action) ([]onboarding.Application, error) {
	t, err := prepareTransition(action)
	if err != nil {
		return nil, err
	}
	rows, err := s.apps.ListByStatus(ctx, string(t.From))
	if err != nil {
		return nil, err
	}
	var all []onboarding.Application
	for _, r := range rows {
		all = append(all, r.ToDomain())
	}
	return onboarding.PrepareSeed(action, all), nil
}

// AdvanceStage applies a prepare action to the eligible applications among
// appIDs. Ineligible and unknown IDs are skipped; the call fails only when
// none is eligible. Production requires confirmed.
func (s *onboardingService) AdvanceStage(ctx context.Context, action onboarding.Action, appIDs []string, confirmed bool) (*AdvanceResult, error) {
	log := logger.FromContext(ctx)
	t, err := prepareTransition(action)
	if err != nil {
		return nil, err
	}
	if err := t.CheckConfirmation(confirmed); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, fmt.Sprintf("%s must be confirmed", action))
	}
	ids := dedupe(appIDs)
	if len(ids) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "no app IDs provided")
	}

	known, err := s.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	apps := make([]onboarding.Application, 0, len(known))
	for _, id := range ids {
		if app, ok := known[id]; ok {
			apps = append(apps, app)
		}
	}
	eligible, _ := onboarding.Partition(action, apps)
	if skipped := len(ids) - len(eligible); skipped > 0 {
		log.Info("advance skipped ineligible applications", zap.String("action", string(action)), zap.Int("skipped", skipped))
	}
	if len(eligible) == 0 {
		return nil, appErr.Newf(appErr.CodeInvalid, "no selected application is %s", t.From.Label())
	}

	changes := make([]repository.StatusChange, 0, len(eligible))
	for _, app := range eligible {
		changes = append(changes, repository.StatusChange{AppID: app.AppID})
	}
	applied, err := s.applyTransition(ctx, t, changes)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, appErr.Newf(appErr.CodeConflict, "applications changed status before %s was applied", action)
	}

	log.Info("stage advanced", zap.String("action", string(action)), zap.Strings("app_ids", applied))
	return &AdvanceResult{Action: action, Status: t.To, Advanced: applied}, nil
}

// applyTransition writes the transition, records metrics and enqueues the
// provisioning task for the applications that moved.
func (s *onboardingService) applyTransition(ctx context.Context, t onboarding.Transition, changes []repository.StatusChange) ([]string, error) {
	if len(changes) == 0 {
		return []string{}, nil
	}
	applied, err := s.apps.ApplyTransition(ctx, t, changes)
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition(string(t.Action), "applied", len(applied))
	metrics.RecordTransition(string(t.Action), "skipped", len(changes)-len(applied))
	s.enqueueProvision(ctx, t.Action, applied)
	return applied, nil
}

// enqueueProvision is best effort: the transition is already committed, so a
// queue failure is logged and not returned.
func (s *onboardingService) enqueueProvision(ctx context.Context, action onboarding.Action, appIDs []string) {
	log := logger.FromContext(ctx)
	if len(appIDs) == 0 {
		return
	}
	if s.queue == nil {
		log.Warn("asynq client not configured, skipping enqueue", zap.String("action", string(action)))
		return
	}
	task, err := tasks.NewProvisionTask(action, appIDs)
	if err != nil {
		log.Error("build provision task failed", zap.Error(err))
		return
	}
	if _, err := s.queue.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			log.Info("provision task already queued", zap.String("action", string(action)))
			return
		}
		log.Error("enqueue provision task failed", zap.String("action", string(action)), zap.Error(err))
	}
}

func prepareTransition(action onboarding.Action) (onboarding.Transition, error) {
	t, ok := onboarding.TransitionFor(action)
	if !ok || action == onboarding.ActionInitialize {
		return t, appErr.Newf(appErr.CodeInvalid, "%q is not a prepare action", action)
	}
	return t, nil
}

func ineligibleReason(have, want onboarding.Status) string {
	return fmt.Sprintf("application is %s, expected %s", have.Label(), want.Label())
}

func notApplied(changes []repository.StatusChange, applied []string) []FailedApp {
	done := make(map[string]bool, len(applied))
	for _, id := range applied {
		done[id] = true
	}
	var out []FailedApp
	for _, c := range changes {
		if !done[c.AppID] {
			out = append(out, FailedApp{AppID: c.AppID, Reason: "status changed concurrently"})
		}
	}
	return out
}
