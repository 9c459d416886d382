package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"authrelay/internal/apperr"
	"authrelay/internal/cache"
	"authrelay/internal/models"
	"authrelay/internal/queue"
	"authrelay/internal/repository"
)

// TriggerTask is the Celery task executed by the external worker.
const TriggerTask = "worker.main.create_items"

type WebHookService struct {
	base
	repo    *repository.Repository[models.WebHook]
	actions *repository.Repository[models.Action]
	queue   *queue.Queue
}

func NewWebHookService(db *gorm.DB, c *cache.Cache, q *queue.Queue, log *zap.SugaredLogger) *WebHookService {
	return &WebHookService{
		base:    base{cache: c, name: "WebHookService", log: log},
		repo:    repository.New[models.WebHook](db, "webhooks", models.WebHookColumns, "Action"),
		actions: repository.New[models.Action](db, "actions", models.ActionColumns),
		queue:   q,
	}
}

func (s *WebHookService) List(ctx context.Context, q repository.FindQuery) (*repository.FindResult[models.WebHook], error) {
	return s.repo.List(ctx, q, false)
}

func (s *WebHookService) GetByID(ctx context.Context, id string) (*models.WebHook, error) {
	return s.repo.ReadByID(ctx, id, false)
}

// Add binds a webhook to an action the caller owns. At most one webhook per
// action; the unique constraint arbitrates races.
func (s *WebHookService) Add(ctx context.Context, userID, actionID, name string) (*models.WebHook, error) {
	action, err := s.actions.ReadByID(ctx, actionID, false)
	if err != nil {
		return nil, err
	}
	if action.UserID != userID {
		return nil, apperr.NotFound(fmt.Sprintf("Resource with id=%s not found", action.UserID))
	}
	webhook := models.WebHook{Name: name, ActionID: actionID, IsActive: true}
	if err := s.repo.Create(ctx, &webhook); err != nil {
		return nil, err
	}
	s.log.Infow("webhook created", "webhook_id", webhook.ID)
	return &webhook, nil
}

// Trigger authorizes the API key against the webhook's action owner and
// enqueues the dispatch task. Returns the task id; execution is fully owned
// by the external worker.
func (s *WebHookService) Trigger(ctx context.Context, id string, key *models.ApiKey) (string, error) {
	webhook, err := s.repo.ReadByID(ctx, id, true)
	if err != nil {
		return "", err
	}
	if webhook.Action == nil || webhook.Action.UserID != key.UserID {
		return "", apperr.Forbidden("You do not have permission to access this webhook.")
	}

	payload := map[string]any{
		"url":          webhook.Action.URL,
		"path_url":     webhook.Action.PathURL,
		"body_version": webhook.Action.BodyVersion,
		"mapping":      webhook.Action.FileMapping,
	}
	taskID, err := s.queue.Enqueue(ctx, TriggerTask, payload)
	if err != nil {
		return "", err
	}
	s.log.Infow("webhook triggered", "webhook_id", webhook.ID, "task_id", taskID)
	return taskID, nil
}

// TaskStatus proxies the queue backend's state for a dispatched task.
func (s *WebHookService) TaskStatus(ctx context.Context, taskID string) (queue.TaskStatus, error) {
	return s.queue.TaskStatus(ctx, taskID)
}

func (s *WebHookService) Update(ctx context.Context, id string, changes map[string]any) (*models.WebHook, error) {
	s.invalidate(ctx, id)
	return s.repo.Update(ctx, id, changes)
}

func (s *WebHookService) Delete(ctx context.Context, id string) error {
	s.invalidate(ctx, id)
	return s.repo.DeleteByID(ctx, id)
}
