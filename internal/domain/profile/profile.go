package profile

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the root aggregate: one document per username, embedding the
// ordered sub-collections. Sub-entity identifiers are assigned at insertion
// time and stay stable for the element's lifetime. The document is created
// lazily the first time anything is added for a username.
type Profile struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username           string             `bson:"username" json:"username"`
	Events             []Event            `bson:"events,omitempty" json:"events"`
	Milestones         []Milestone        `bson:"milestones,omitempty" json:"milestones"`
	Testimonials       []Testimonial      `bson:"testimonials,omitempty" json:"testimonials"`
	PinnedTestimonials []string           `bson:"pinnedTestimonials,omitempty" json:"pinnedTestimonials"`
	UpdatedAt          time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
}

type DateRange struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	URL         string             `bson:"url" json:"url"`
	Date        DateRange          `bson:"date" json:"date"`
	IsVirtual   bool               `bson:"isVirtual" json:"isVirtual"`
	Price       string             `bson:"price,omitempty" json:"price,omitempty"`
	Order       int                `bson:"order" json:"order"`
}

func (e *Event) EntityID() primitive.ObjectID      { return e.ID }
func (e *Event) SetEntityID(id primitive.ObjectID) { e.ID = id }

type Milestone struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	URL         string             `bson:"url,omitempty" json:"url,omitempty"`
	Icon        string             `bson:"icon" json:"icon"`
	Date        time.Time          `bson:"date" json:"date"`
	IsGoal      bool               `bson:"isGoal" json:"isGoal"`
	Order       int                `bson:"order" json:"order"`
}

func (m *Milestone) EntityID() primitive.ObjectID      { return m.ID }
func (m *Milestone) SetEntityID(id primitive.ObjectID) { m.ID = id }

// Testimonial lives on the contributor's document and references the
// profile it is about; the referenced profile only stores pin membership.
type Testimonial struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	About       string             `bson:"about" json:"about"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty"`
	Description string             `bson:"description" json:"description"`
	Date        time.Time          `bson:"date" json:"date"`
	Order       int                `bson:"order" json:"order"`
}

func (t *Testimonial) EntityID() primitive.ObjectID      { return t.ID }
func (t *Testimonial) SetEntityID(id primitive.ObjectID) { t.ID = id }

// TestimonialView is the read shape for the pin management screen: the
// testimonial content joined with the contributor's username and whether
// the owner currently pins it.
type TestimonialView struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Username    string             `bson:"username" json:"username"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty"`
	Description string             `bson:"description" json:"description"`
	Date        time.Time          `bson:"date" json:"date"`
	IsPinned    bool               `bson:"-" json:"isPinned"`
}

// UpsertResult is the store acknowledgment returned by mutating
// operations. Callers that need the created element re-fetch it.
type UpsertResult struct {
	Matched    int64  `json:"matched"`
	Modified   int64  `json:"modified"`
	UpsertedID string `json:"upsertedId,omitempty"`
}

// SubEntity constrains the pointer type of an embedded array element.
type SubEntity[E any] interface {
	*E
	EntityID() primitive.ObjectID
	SetEntityID(id primitive.ObjectID)
}

// CollectionRepository is the generic engine over one named array field of
// the Profile document. Identifiers are passed as opaque hex tokens;
// malformed tokens fail before any store access.
type CollectionRepository[E any] interface {
	GetOne(ctx context.Context, username, id string) (*E, error)
	Add(ctx context.Context, username string, entity *E) (*UpsertResult, error)
	Update(ctx context.Context, username, id string, entity *E) (*UpsertResult, error)
}

// Repository covers the whole-document and cross-document operations that
// do not fit the single-array engine.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Profile, error)
	// TestimonialsAbout walks other profiles' testimonials arrays looking
	// for entries about owner. A non-nil contributors slice restricts the
	// scan to those usernames.
	TestimonialsAbout(ctx context.Context, owner string, contributors []string) ([]TestimonialView, error)
	// SetPinned replaces the whole pinned set. Document-level atomic, but
	// last-writer-wins across read-modify-write callers.
	SetPinned(ctx context.Context, owner string, usernames []string) (*UpsertResult, error)
	// Pin and Unpin are the race-free single-username toggles.
	Pin(ctx context.Context, owner, contributor string) error
	Unpin(ctx context.Context, owner, contributor string) error
}

// TestimonialIndex is the precomputed reverse mapping from a profile to
// the usernames that contributed a testimonial about it. Best-effort: a
// failing index degrades reads to a full scan, never the request.
type TestimonialIndex interface {
	Contributors(ctx context.Context, owner string) ([]string, bool, error)
	ReplaceContributors(ctx context.Context, owner string, contributors []string) error
	AddContributor(ctx context.Context, owner, contributor string) error
}
