package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"authrelay/internal/apperr"
	"authrelay/internal/cache"
	"authrelay/internal/models"
	"authrelay/internal/repository"
)

// MIME types accepted for mapping uploads.
var allowedMappingTypes = map[string]bool{
	"application/x-yaml": true,
	"text/yaml":          true,
	"application/jmes":   true,
	"text/jmes":          true,
	"application/yaml":   true,
	"application/yml":    true,
}

var yamlMappingTypes = map[string]bool{
	"application/x-yaml": true,
	"text/yaml":          true,
	"application/yaml":   true,
	"application/yml":    true,
}

type ActionInput struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	PathURL     string  `json:"path_url"`
	BodyVersion string  `json:"body_version"`
	Schedule    *string `json:"schedule"`
}

type ActionService struct {
	base
	repo *repository.Repository[models.Action]
}

func NewActionService(db *gorm.DB, c *cache.Cache, log *zap.SugaredLogger) *ActionService {
	return &ActionService{
		base: base{cache: c, name: "ActionService", log: log},
		repo: repository.New[models.Action](db, "actions", models.ActionColumns),
	}
}

// ValidateSchedule checks an optional cron string. The schedule is declared
// on the action for external schedulers; this service never executes it.
func ValidateSchedule(schedule *string) error {
	if schedule == nil || *schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(*schedule); err != nil {
		return apperr.Validation(fmt.Sprintf("Invalid cron expression: %s", *schedule))
	}
	return nil
}

func (s *ActionService) List(ctx context.Context, q repository.FindQuery) (*repository.FindResult[models.Action], error) {
	return s.repo.List(ctx, q, false)
}

func (s *ActionService) GetByID(ctx context.Context, id string) (*models.Action, error) {
	return s.repo.ReadByID(ctx, id, false)
}

// Add binds the action to its creating user; user_id is immutable afterwards.
func (s *ActionService) Add(ctx context.Context, userID string, in ActionInput) (*models.Action, error) {
	if err := ValidateSchedule(in.Schedule); err != nil {
		return nil, err
	}
	action := models.Action{
		Name:        in.Name,
		URL:         in.URL,
		PathURL:     in.PathURL,
		BodyVersion: in.BodyVersion,
		UserID:      userID,
		Schedule:    in.Schedule,
	}
	if err := s.repo.Create(ctx, &action); err != nil {
		return nil, err
	}
	s.log.Infow("action created", "action_id", action.ID)
	return &action, nil
}

// UploadFile validates and stores a mapping file base64-encoded on the
// action. YAML-typed uploads must parse; JMESPath files are stored as-is.
func (s *ActionService) UploadFile(ctx context.Context, id, contentType string, content []byte) (*models.Action, error) {
	if !allowedMappingTypes[contentType] {
		return nil, apperr.Validation("Invalid file type. Allowed types are YAML and JMESPath files.")
	}
	if yamlMappingTypes[contentType] {
		var doc any
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, apperr.Validation("Invalid YAML content in mapping file.")
		}
	}
	encoded := base64.StdEncoding.EncodeToString(content)
	s.invalidate(ctx, id)
	return s.repo.UpdateAttr(ctx, id, "file_mapping", encoded)
}

func (s *ActionService) Update(ctx context.Context, id string, changes map[string]any) (*models.Action, error) {
	if raw, ok := changes["schedule"]; ok {
		if sched, ok := raw.(string); ok {
			if err := ValidateSchedule(&sched); err != nil {
				return nil, err
			}
		}
	}
	s.invalidate(ctx, id)
	return s.repo.Update(ctx, id, changes)
}

func (s *ActionService) Delete(ctx context.Context, id string) error {
	s.invalidate(ctx, id)
	return s.repo.DeleteByID(ctx, id)
}
