package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/cloud-next/onboarding/internal/metrics"
	"github.com/cloud-next/onboarding/internal/models"
	"github.com/cloud-next/onboarding/internal/onboarding"
	"github.com/cloud-next/onboarding/internal/repository"
	"github.com/cloud-next/onboarding/pkg/logger"
	"github.com/cloud-next/onboarding/pkg/utils"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeProvision is enqueued after a bulk action moved applications.
const TypeProvision = "onboarding:provision"

// ProvisionPayload is the task payload for provision tasks.
type ProvisionPayload struct {
	Action string   `json:"action"`
	AppIDs []string `json:"app_ids"`
}

// TaskID derives a stable ID from the action and the sorted app IDs so the
// same batch enqueued twice is deduplicated by the queue.
func TaskID(action onboarding.Action, appIDs []string) string {
	ids := append([]string(nil), appIDs...)
	sort.Strings(ids)
	return utils.Fingerprint(",", append([]string{string(action)}, ids...)...)
}

// NewProvisionTask builds the task for appIDs moved by action.
func NewProvisionTask(action onboarding.Action, appIDs []string) (*asynq.Task, error) {
	b, err := json.Marshal(ProvisionPayload{Action: string(action), AppIDs: appIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProvision, b,
		asynq.TaskID(TaskID(action, appIDs)),
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
	), nil
}

// ProvisionTaskHandler records the post-transition provisioning step in the
// stage history.
type ProvisionTaskHandler struct {
	events repository.StageEventRepository
}

func NewProvisionTaskHandler(events repository.StageEventRepository) *ProvisionTaskHandler {
	return &ProvisionTaskHandler{events: events}
}

// Register mounts the handler on mux.
func (h *ProvisionTaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeProvision, h.HandleProvision)
}

func (h *ProvisionTaskHandler) HandleProvision(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { metrics.RecordTask(TypeProvision, err) }()

	var p ProvisionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid provision task payload", zap.Error(err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	action, err := onboarding.ParseAction(p.Action)
	if err != nil {
		logger.L().Error("invalid action in provision task", zap.String("action", p.Action))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logger.L().Info("handling provision task", zap.String("action", string(action)), zap.Int("apps", len(p.AppIDs)))

	for _, id := range p.AppIDs {
		ev := &models.StageEvent{
			AppID:      id,
			Action:     string(action),
			FromStatus: string(action.Result()),
			ToStatus:   string(action.Result()),
			Kind:       models.EventProvisioned,
		}
		if err := h.events.Create(ctx, ev); err != nil {
			logger.L().Error("record provisioned event failed", zap.String("app_id", id), zap.Error(err))
			return err
		}
	}

	logger.L().Info("provision task completed", zap.String("action", string(action)), zap.Strings("app_ids", p.AppIDs))
	return nil
}
