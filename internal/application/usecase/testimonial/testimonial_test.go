package testimonial

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	kafkaEvent "github.com/linkforge/profile-hub/adapters/event"
	"github.com/linkforge/profile-hub/internal/domain/profile"
	"github.com/linkforge/profile-hub/pkg/apperror"
	"github.com/linkforge/profile-hub/pkg/logger"
)

// memProfileRepo mimics the store's per-document atomicity: SetPinned
// replaces the whole array, Pin/Unpin are single-element set operations.
type memProfileRepo struct {
	pinned       map[string][]string
	views        []profile.TestimonialView
	lastContribs []string
	scanCalls    int
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{pinned: make(map[string][]string)}
}

func (m *memProfileRepo) GetByUsername(_ context.Context, username string) (*profile.Profile, error) {
	pins, ok := m.pinned[username]
	if !ok {
		return nil, apperror.NewNotFound("profile", username)
	}
	return &profile.Profile{Username: username, PinnedTestimonials: slices.Clone(pins)}, nil
}

func (m *memProfileRepo) TestimonialsAbout(_ context.Context, _ string, contributors []string) ([]profile.TestimonialView, error) {
	m.scanCalls++
	m.lastContribs = contributors
	if contributors == nil {
		return slices.Clone(m.views), nil
	}
	out := make([]profile.TestimonialView, 0)
	for _, v := range m.views {
		if slices.Contains(contributors, v.Username) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memProfileRepo) SetPinned(_ context.Context, owner string, usernames []string) (*profile.UpsertResult, error) {
	m.pinned[owner] = slices.Clone(usernames)
	return &profile.UpsertResult{Matched: 1, Modified: 1}, nil
}

func (m *memProfileRepo) Pin(_ context.Context, owner, contributor string) error {
	if !slices.Contains(m.pinned[owner], contributor) {
		m.pinned[owner] = append(m.pinned[owner], contributor)
	}
	return nil
}

func (m *memProfileRepo) Unpin(_ context.Context, owner, contributor string) error {
	m.pinned[owner] = slices.DeleteFunc(slices.Clone(m.pinned[owner]), func(u string) bool {
		return u == contributor
	})
	return nil
}

type memContribRepo struct {
	added map[string][]*profile.Testimonial
}

func newMemContribRepo() *memContribRepo {
	return &memContribRepo{added: make(map[string][]*profile.Testimonial)}
}

func (m *memContribRepo) GetOne(_ context.Context, username, id string) (*profile.Testimonial, error) {
	for _, t := range m.added[username] {
		if t.ID.Hex() == id {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("testimonial", id)
}

func (m *memContribRepo) Add(_ context.Context, username string, t *profile.Testimonial) (*profile.UpsertResult, error) {
	t.SetEntityID(primitive.NewObjectID())
	m.added[username] = append(m.added[username], t)
	return &profile.UpsertResult{Matched: 1, Modified: 1}, nil
}

func (m *memContribRepo) Update(_ context.Context, _, id string, _ *profile.Testimonial) (*profile.UpsertResult, error) {
	return nil, apperror.NewNotFound("testimonial", id)
}

type memIndex struct {
	contributors map[string][]string
	addCalls     int
	replaceCalls int
}

func newMemIndex() *memIndex {
	return &memIndex{contributors: make(map[string][]string)}
}

func (m *memIndex) Contributors(_ context.Context, owner string) ([]string, bool, error) {
	c, ok := m.contributors[owner]
	return c, ok, nil
}

func (m *memIndex) ReplaceContributors(_ context.Context, owner string, contributors []string) error {
	m.replaceCalls++
	m.contributors[owner] = slices.Clone(contributors)
	return nil
}

func (m *memIndex) AddContributor(_ context.Context, owner, contributor string) error {
	m.addCalls++
	if !slices.Contains(m.contributors[owner], contributor) {
		m.contributors[owner] = append(m.contributors[owner], contributor)
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishProfileEvent(context.Context, kafkaEvent.ProfileEventPayload) error {
	return nil
}

func newTestUseCase(repo *memProfileRepo, contribs *memContribRepo, index *memIndex) *UseCase {
	return NewUseCase(repo, contribs, index, noopPublisher{}, logger.NewNop())
}

func TestListForOwner_AnnotatesPinState(t *testing.T) {
	repo := newMemProfileRepo()
	repo.views = []profile.TestimonialView{
		{ID: primitive.NewObjectID(), Username: "bob", Description: "great collaborator"},
		{ID: primitive.NewObjectID(), Username: "carol", Description: "ships fast"},
	}
	repo.pinned["alice"] = []string{"carol"}

	uc := newTestUseCase(repo, newMemContribRepo(), newMemIndex())

	views, err := uc.ListForOwner(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.False(t, views[0].IsPinned)
	assert.True(t, views[1].IsPinned)
}

func TestListForOwner_ColdIndexRebuilds(t *testing.T) {
	repo := newMemProfileRepo()
	repo.views = []profile.TestimonialView{
		{ID: primitive.NewObjectID(), Username: "bob", Description: "one"},
		{ID: primitive.NewObjectID(), Username: "bob", Description: "two"},
		{ID: primitive.NewObjectID(), Username: "carol", Description: "three"},
	}
	index := newMemIndex()
	uc := newTestUseCase(repo, newMemContribRepo(), index)

	_, err := uc.ListForOwner(context.Background(), "alice")
	require.NoError(t, err)

	assert.Nil(t, repo.lastContribs, "cold index must trigger a full scan")
	assert.Equal(t, 1, index.replaceCalls)
	assert.ElementsMatch(t, []string{"bob", "carol"}, index.contributors["alice"])
}

func TestListForOwner_WarmIndexNarrowsScan(t *testing.T) {
	repo := newMemProfileRepo()
	repo.views = []profile.TestimonialView{
		{ID: primitive.NewObjectID(), Username: "bob", Description: "one"},
	}
	index := newMemIndex()
	index.contributors["alice"] = []string{"bob"}
	uc := newTestUseCase(repo, newMemContribRepo(), index)

	_, err := uc.ListForOwner(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, []string{"bob"}, repo.lastContribs)
	assert.Zero(t, index.replaceCalls)
}

func TestSetPinned_DedupesAndIsIdempotent(t *testing.T) {
	repo := newMemProfileRepo()
	uc := newTestUseCase(repo, newMemContribRepo(), newMemIndex())

	_, err := uc.SetPinned(context.Background(), "alice", []string{"bob", "carol", "bob", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, repo.pinned["alice"])

	_, err = uc.SetPinned(context.Background(), "alice", []string{"bob", "carol"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, repo.pinned["alice"])
}

// Two callers that each read the pin list, toggle their own entry and
// write the full set back race: the interleaving below loses the first
// caller's toggle. The single-username Pin path has no read phase, so the
// same interleaving loses nothing.
func TestPinRace_FullReplaceLosesToggle(t *testing.T) {
	ctx := context.Background()
	repo := newMemProfileRepo()
	uc := newTestUseCase(repo, newMemContribRepo(), newMemIndex())

	_, err := uc.SetPinned(ctx, "alice", []string{"dave"})
	require.NoError(t, err)

	read1, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	read2, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)

	_, err = uc.SetPinned(ctx, "alice", append(read1.PinnedTestimonials, "bob"))
	require.NoError(t, err)
	_, err = uc.SetPinned(ctx, "alice", append(read2.PinnedTestimonials, "carol"))
	require.NoError(t, err)

	assert.NotContains(t, repo.pinned["alice"], "bob", "the stale full-set write clobbers the first toggle")
	assert.Contains(t, repo.pinned["alice"], "carol")
}

func TestPinRace_AtomicToggleLosesNothing(t *testing.T) {
	ctx := context.Background()
	repo := newMemProfileRepo()
	uc := newTestUseCase(repo, newMemContribRepo(), newMemIndex())

	_, err := uc.SetPinned(ctx, "alice", []string{"dave"})
	require.NoError(t, err)

	require.NoError(t, uc.Pin(ctx, "alice", "bob"))
	require.NoError(t, uc.Pin(ctx, "alice", "carol"))

	assert.ElementsMatch(t, []string{"dave", "bob", "carol"}, repo.pinned["alice"])
}

func TestAdd_WritesToContributorDocument(t *testing.T) {
	contribs := newMemContribRepo()
	index := newMemIndex()
	index.contributors["alice"] = []string{"earlier"}
	uc := newTestUseCase(newMemProfileRepo(), contribs, index)

	res, err := uc.Add(context.Background(), "bob", Input{
		About:       "alice",
		Description: "brilliant to work with",
		Date:        "2024-03-10",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Matched)

	require.Len(t, contribs.added["bob"], 1)
	assert.Equal(t, "alice", contribs.added["bob"][0].About)
	assert.Contains(t, index.contributors["alice"], "bob")
}

func TestAdd_RejectsSelfReference(t *testing.T) {
	uc := newTestUseCase(newMemProfileRepo(), newMemContribRepo(), newMemIndex())

	_, err := uc.Add(context.Background(), "alice", Input{
		About:       "alice",
		Description: "my own horn",
		Date:        "2024-03-10",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.FieldErrors, "about")
}

func TestPin_EmptyContributorRejected(t *testing.T) {
	uc := newTestUseCase(newMemProfileRepo(), newMemContribRepo(), newMemIndex())
	err := uc.Pin(context.Background(), "alice", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
