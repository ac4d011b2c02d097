package testimonial

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

// UseCase manages the pin set on a profile and the reverse listing of
// testimonials written about it. Content is stored on the contributor's
// document; the owner's document only records pin membership.
type UseCase struct {
	profiles  profile.Repository
	contribs  profile.CollectionRepository[profile.Testimonial]
	index     profile.TestimonialIndex
	publisher kafkaEvent.Publisher
	logger    logger.Logger
	validate  *validator.Validate
}

func NewUseCase(
	profiles profile.Repository,
	contribs profile.CollectionRepository[profile.Testimonial],
	index profile.TestimonialIndex,
	publisher kafkaEvent.Publisher,
	log logger.Logger,
) *UseCase {
	return &UseCase{
		profiles:  profiles,
		contribs:  contribs,
		index:     index,
		publisher: publisher,
		logger:    log,
		validate:  validation.New(),
	}
}

// ListForOwner returns every testimonial about owner, annotated with its
// pin state. The reverse index narrows the scan when warm; a cold or
// failing index falls back to the full traversal and repopulates it.
func (uc *UseCase) ListForOwner(ctx context.Context, owner string) ([]profile.TestimonialView, error) {
	var contributors []string
	warm := false
	if cached, ok, err := uc.index.Contributors(ctx, owner); err != nil {
		uc.logger.Warn("testimonial index read failed, falling back to scan",
			zap.String("username", owner), zap.Error(err))
	} else if ok {
		contributors = cached
		warm = true
	}

	views, err := uc.profiles.TestimonialsAbout(ctx, owner, contributors)
	if err != nil {
		uc.logger.Error("failed to list testimonials", err, zap.String("username", owner))
		return nil, err
	}

	if !warm && len(views) > 0 {
		seen := make(map[string]struct{}, len(views))
		rebuilt := make([]string, 0, len(views))
		for _, v := range views {
			if _, dup := seen[v.Username]; dup {
				continue
			}
			seen[v.Username] = struct{}{}
			rebuilt = append(rebuilt, v.Username)
		}
		if err := uc.index.ReplaceContributors(ctx, owner, rebuilt); err != nil {
			uc.logger.Warn("testimonial index rebuild failed",
				zap.String("username", owner), zap.Error(err))
		}
	}

	pinned := uc.pinnedSet(ctx, owner)
	for i := range views {
		_, views[i].IsPinned = pinned[views[i].Username]
	}
	return views, nil
}

func (uc *UseCase) pinnedSet(ctx context.Context, owner string) map[string]struct{} {
	set := make(map[string]struct{})
	p, err := uc.profiles.GetByUsername(ctx, owner)
	if err != nil {
		// A profile that does not exist yet simply has nothing pinned.
		if !errors.Is(err, apperror.ErrNotFound) {
			uc.logger.Warn("failed to load pinned set, treating as empty",
				zap.String("username", owner), zap.Error(err))
		}
		return set
	}
	for _, u := range p.PinnedTestimonials {
		set[u] = struct{}{}
	}
	return set
}

// SetPinned replaces the whole pin set, deduplicated but order-preserving.
// The write is atomic on the document; two callers that each computed a
// full set from a stale read still race, last writer wins. Pin and Unpin
// are the race-free alternative.
func (uc *UseCase) SetPinned(ctx context.Context, owner string, usernames []string) (*profile.UpsertResult, error) {
	seen := make(map[string]struct{}, len(usernames))
	deduped := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		deduped = append(deduped, u)
	}

	res, err := uc.profiles.SetPinned(ctx, owner, deduped)
	if err != nil {
		uc.logger.Error("failed to replace pinned testimonials", err, zap.String("username", owner))
		return nil, err
	}

	uc.publishPinsChanged(owner)
	return res, nil
}

func (uc *UseCase) Pin(ctx context.Context, owner, contributor string) error {
	if contributor == "" {
		return apperror.NewValidation(map[string]string{"username": "is required"})
	}
	if err := uc.profiles.Pin(ctx, owner, contributor); err != nil {
		uc.logger.Error("failed to pin testimonial", err, zap.String("username", owner))
		return err
	}
	uc.publishPinsChanged(owner)
	return nil
}

func (uc *UseCase) Unpin(ctx context.Context, owner, contributor string) error {
	if contributor == "" {
		return apperror.NewValidation(map[string]string{"username": "is required"})
	}
	if err := uc.profiles.Unpin(ctx, owner, contributor); err != nil {
		uc.logger.Error("failed to unpin testimonial", err, zap.String("username", owner))
		return err
	}
	uc.publishPinsChanged(owner)
	return nil
}

type Input struct {
	About       string `json:"about" validate:"required,min=2,max=64"`
	Title       string `json:"title" validate:"omitempty,max=256"`
	Description string `json:"description" validate:"required,min=2,max=512"`
	Date        string `json:"date" validate:"required"`
	Order       int    `json:"order"`
}

// Add records a testimonial the contributor wrote about another profile.
// It lands on the contributor's own document, which is what the reverse
// listing later traverses.
func (uc *UseCase) Add(ctx context.Context, contributor string, in Input) (*profile.UpsertResult, error) {
	fields := map[string]string{}
	if err := uc.validate.Struct(in); err != nil {
		fields = validation.FieldErrors(err)
	}
	date, _ := validation.RequiredDate(in.Date, "date", fields)
	if in.About == contributor {
		fields["about"] = "cannot reference your own profile"
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidation(fields)
	}

	t := &profile.Testimonial{
		About:       in.About,
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Order:       in.Order,
	}

	res, err := uc.contribs.Add(ctx, contributor, t)
	if err != nil {
		uc.logger.Error("failed to add testimonial", err, zap.String("username", contributor))
		return nil, err
	}

	if err := uc.index.AddContributor(ctx, in.About, contributor); err != nil {
		uc.logger.Warn("testimonial index update failed",
			zap.String("username", in.About), zap.Error(err))
	}

	go func() {
		err := uc.publisher.PublishProfileEvent(context.Background(), kafkaEvent.ProfileEventPayload{
			EventType:  kafkaEvent.ProfileEventTypeSubEntityAdded,
			Username:   contributor,
			Collection: "testimonials",
			EntityID:   t.ID.Hex(),
			About:      in.About,
		})
		if err != nil {
			uc.logger.Error("failed to publish profile event", err, zap.String("username", contributor))
		}
	}()
	return res, nil
}

func (uc *UseCase) publishPinsChanged(owner string) {
	go func() {
		err := uc.publisher.PublishProfileEvent(context.Background(), kafkaEvent.ProfileEventPayload{
			EventType: kafkaEvent.ProfileEventTypePinsChanged,
			Username:  owner,
		})
		if err != nil {
			uc.logger.Error("failed to publish profile event", err, zap.String("username", owner))
		}
	}()
}
