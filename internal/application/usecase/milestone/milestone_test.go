package milestone

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	kafkaEvent "github.com/linkforge/profile-hub/adapters/event"
	"github.com/linkforge/profile-hub/internal/domain/profile"
	"github.com/linkforge/profile-hub/pkg/apperror"
	"github.com/linkforge/profile-hub/pkg/logger"
)

type stubRepo struct {
	added     []*profile.Milestone
	updated   []*profile.Milestone
	updateErr error
}

func (s *stubRepo) GetOne(context.Context, string, string) (*profile.Milestone, error) {
	return nil, apperror.NewNotFound("milestone", "unused")
}

func (s *stubRepo) Add(_ context.Context, _ string, m *profile.Milestone) (*profile.UpsertResult, error) {
	m.SetEntityID(primitive.NewObjectID())
	s.added = append(s.added, m)
	return &profile.UpsertResult{Matched: 1, Modified: 1}, nil
}

func (s *stubRepo) Update(_ context.Context, _, _ string, m *profile.Milestone) (*profile.UpsertResult, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updated = append(s.updated, m)
	return &profile.UpsertResult{Matched: 1, Modified: 1}, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishProfileEvent(context.Context, kafkaEvent.ProfileEventPayload) error {
	return nil
}

func validInput() Input {
	return Input{
		Title:       "Joined Acme",
		Description: "Started as a platform engineer",
		Icon:        "FaRocket",
		Date:        "2023-09-01",
		IsGoal:      false,
	}
}

func TestAdd_ValidPayload(t *testing.T) {
	repo := &stubRepo{}
	uc := NewUseCase(repo, noopPublisher{}, logger.NewNop())

	res, err := uc.Add(context.Background(), "alice", validInput())
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Matched)

	require.Len(t, repo.added, 1)
	assert.Equal(t, "Joined Acme", repo.added[0].Title)
	assert.Equal(t, time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC), repo.added[0].Date)
}

func TestAdd_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing title", func(in *Input) { in.Title = "" }, "title"},
		{"title too short", func(in *Input) { in.Title = "a" }, "title"},
		{"missing description", func(in *Input) { in.Description = "" }, "description"},
		{"missing icon", func(in *Input) { in.Icon = "" }, "icon"},
		{"icon too short", func(in *Input) { in.Icon = "F" }, "icon"},
		{"missing date", func(in *Input) { in.Date = "" }, "date"},
		{"unparseable date", func(in *Input) { in.Date = "someday" }, "date"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubRepo{}
			uc := NewUseCase(repo, noopPublisher{}, logger.NewNop())

			in := validInput()
			tc.mutate(&in)

			_, err := uc.Add(context.Background(), "alice", in)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			require.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.Contains(t, appErr.FieldErrors, tc.field)
			assert.Empty(t, repo.added)
		})
	}
}

func TestAdd_OptionalURLBounded(t *testing.T) {
	repo := &stubRepo{}
	uc := NewUseCase(repo, noopPublisher{}, logger.NewNop())

	in := validInput()
	in.URL = ""
	_, err := uc.Add(context.Background(), "alice", in)
	assert.NoError(t, err, "url is optional")

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	in.URL = string(long)
	_, err = uc.Add(context.Background(), "alice", in)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.FieldErrors, "url")
}

func TestUpdate_IDMismatchRejected(t *testing.T) {
	repo := &stubRepo{}
	uc := NewUseCase(repo, noopPublisher{}, logger.NewNop())

	in := validInput()
	in.ID = primitive.NewObjectID().Hex()

	_, err := uc.Update(context.Background(), "alice", primitive.NewObjectID().Hex(), in)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.FieldErrors, "_id")
	assert.Empty(t, repo.updated)
}

func TestUpdate_NonexistentIDSurfacesNotFound(t *testing.T) {
	repo := &stubRepo{updateErr: apperror.NewNotFound("milestone", "deadbeefdeadbeefdeadbeef")}
	uc := NewUseCase(repo, noopPublisher{}, logger.NewNop())

	_, err := uc.Update(context.Background(), "bob", "deadbeefdeadbeefdeadbeef", validInput())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
