package event

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

// UseCase validates and shapes event payloads before handing them to the
// embedded-collection repository.
type UseCase struct {
	repo      profile.CollectionRepository[profile.Event]
	publisher kafkaEvent.Publisher
	logger    logger.Logger
	validate  *validator.Validate
}

func NewUseCase(repo profile.CollectionRepository[profile.Event], publisher kafkaEvent.Publisher, log logger.Logger) *UseCase {
	return &UseCase{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		validate:  validation.New(),
	}
}

type Input struct {
	ID          string `json:"_id"`
	Name        string `json:"name" validate:"required,min=2,max=256"`
	Description string `json:"description" validate:"max=2048"`
	URL         string `json:"url" validate:"required,min=2,max=256,url"`
	DateStart   string `json:"date.start" validate:"required"`
	DateEnd     string `json:"date.end" validate:"required"`
	IsVirtual   bool   `json:"isVirtual"`
	Price       string `json:"price" validate:"max=32"`
	Order       int    `json:"order"`
}

func (uc *UseCase) Get(ctx context.Context, username, id string) (*profile.Event, error) {
	return uc.repo.GetOne(ctx, username, id)
}

func (uc *UseCase) Add(ctx context.Context, username string, in Input) (*profile.UpsertResult, error) {
	ev, err := uc.build(in)
	if err != nil {
		return nil, err
	}

	res, err := uc.repo.Add(ctx, username, ev)
	if err != nil {
		uc.logger.Error("failed to add event", err, zap.String("username", username))
		return nil, err
	}

	uc.publishChange(kafkaEvent.ProfileEventTypeSubEntityAdded, username, ev.ID.Hex())
	return res, nil
}

func (uc *UseCase) Update(ctx context.Context, username, id string, in Input) (*profile.UpsertResult, error) {
	// A payload carrying its own id must agree with the addressed one;
	// silently preferring either would update the wrong element.
	if in.ID != "" && in.ID != id {
		return nil, apperror.NewValidation(map[string]string{
			"_id": "does not match the event being updated",
		})
	}

	ev, err := uc.build(in)
	if err != nil {
		return nil, err
	}

	res, err := uc.repo.Update(ctx, username, id, ev)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			uc.logger.Error("failed to update event", err, zap.String("username", username))
		}
		return nil, err
	}

	uc.publishChange(kafkaEvent.ProfileEventTypeSubEntityUpdated, username, id)
	return res, nil
}

// build runs the field validation and converts the payload into the
// domain shape. No store access happens past a validation failure.
func (uc *UseCase) build(in Input) (*profile.Event, error) {
	fields := map[string]string{}
	if err := uc.validate.Struct(in); err != nil {
		fields = validation.FieldErrors(err)
	}

	start, startOK := validation.RequiredDate(in.DateStart, "date.start", fields)
	end, endOK := validation.RequiredDate(in.DateEnd, "date.end", fields)
	if startOK && endOK && end.Before(start) {
		fields["date.end"] = "must not be before date.start"
	}

	if len(fields) > 0 {
		return nil, apperror.NewValidation(fields)
	}

	return &profile.Event{
		Name:        in.Name,
		Description: in.Description,
		URL:         in.URL,
		Date:        profile.DateRange{Start: start, End: end},
		IsVirtual:   in.IsVirtual,
		Price:       in.Price,
		Order:       in.Order,
	}, nil
}

func (uc *UseCase) publishChange(eventType, username, entityID string) {
	go func() {
		err := uc.publisher.PublishProfileEvent(context.Background(), kafkaEvent.ProfileEventPayload{
			EventType:  eventType,
			Username:   username,
			Collection: "events",
			EntityID:   entityID,
		})
		if err != nil {
			uc.logger.Error("failed to publish profile event", err, zap.String("username", username))
		}
	}()
}
