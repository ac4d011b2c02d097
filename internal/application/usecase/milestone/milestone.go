package milestone

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	kafkaEvent "github.com/linkforge/profile-hub/adapters/event"
	"github.com/linkforge/profile-hub/internal/application/validation"
	"github.com/linkforge/profile-hub/internal/domain/profile"
	"github.com/linkforge/profile-hub/pkg/apperror"
	"github.com/linkforge/profile-hub/pkg/logger"
)

type UseCase struct {
	repo      profile.CollectionRepository[profile.Milestone]
	publisher kafkaEvent.Publisher
	logger    logger.Logger
	validate  *validator.Validate
}

func NewUseCase(repo profile.CollectionRepository[profile.Milestone], publisher kafkaEvent.Publisher, log logger.Logger) *UseCase {
	return &UseCase{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		validate:  validation.New(),
	}
}

// Icon names come from a fixed external icon set; resolving them against
// it happens at the rendering boundary, not here. We only bound the token.
type Input struct {
	ID          string `json:"_id"`
	Title       string `json:"title" validate:"required,min=2,max=256"`
	Description string `json:"description" validate:"required,min=2,max=512"`
	URL         string `json:"url" validate:"omitempty,max=256"`
	Icon        string `json:"icon" validate:"required,min=2,max=32"`
	Date        string `json:"date" validate:"required"`
	IsGoal      bool   `json:"isGoal"`
	Order       int    `json:"order"`
}

func (uc *UseCase) Get(ctx context.Context, username, id string) (*profile.Milestone, error) {
	return uc.repo.GetOne(ctx, username, id)
}

func (uc *UseCase) Add(ctx context.Context, username string, in Input) (*profile.UpsertResult, error) {
	m, err := uc.build(in)
	if err != nil {
		return nil, err
	}

	res, err := uc.repo.Add(ctx, username, m)
	if err != nil {
		uc.logger.Error("failed to add milestone", err, zap.String("username", username))
		return nil, err
	}

	uc.publishChange(kafkaEvent.ProfileEventTypeSubEntityAdded, username, m.ID.Hex())
	return res, nil
}

func (uc *UseCase) Update(ctx context.Context, username, id string, in Input) (*profile.UpsertResult, error) {
	if in.ID != "" && in.ID != id {
		return nil, apperror.NewValidation(map[string]string{
			"_id": "does not match the milestone being updated",
		})
	}

	m, err := uc.build(in)
	if err != nil {
		return nil, err
	}

	res, err := uc.repo.Update(ctx, username, id, m)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			uc.logger.Error("failed to update milestone", err, zap.String("username", username))
		}
		return nil, err
	}

	uc.publishChange(kafkaEvent.ProfileEventTypeSubEntityUpdated, username, id)
	return res, nil
}

func (uc *UseCase) build(in Input) (*profile.Milestone, error) {
	fields := map[string]string{}
	if err := uc.validate.Struct(in); err != nil {
		fields = validation.FieldErrors(err)
	}

	date, _ := validation.RequiredDate(in.Date, "date", fields)

	if len(fields) > 0 {
		return nil, apperror.NewValidation(fields)
	}

	return &profile.Milestone{
		Title:       in.Title,
		Description: in.Description,
		URL:         in.URL,
		Icon:        in.Icon,
		Date:        date,
		IsGoal:      in.IsGoal,
		Order:       in.Order,
	}, nil
}

func (uc *UseCase) publishChange(eventType, username, entityID string) {
	go func() {
		err := uc.publisher.PublishProfileEvent(context.Background(), kafkaEvent.ProfileEventPayload{
			EventType:  eventType,
			Username:   username,
			Collection: "milestones",
			EntityID:   entityID,
		})
		if err != nil {
			uc.logger.Error("failed to publish profile event", err, zap.String("username", username))
		}
	}()
}
