package persistence

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linkforge/profile-hub/internal/domain/profile"
	"github.com/linkforge/profile-hub/pkg/apperror"
	"github.com/linkforge/profile-hub/pkg/logger"
)

type mongoProfileRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
	logger  logger.Logger
}

func NewMongoProfileRepo(db *mongo.Database, timeout time.Duration, log logger.Logger) profile.Repository {
	return &mongoProfileRepo{
		coll:    db.Collection(ProfilesCollection),
		timeout: timeout,
		logger:  log,
	}
}

func (r *mongoProfileRepo) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *mongoProfileRepo) GetByUsername(ctx context.Context, username string) (*profile.Profile, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	p := &profile.Profile{}
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NewNotFound("profile", username)
		}
		return nil, apperror.NewUnavailable("failed to query profile", err)
	}
	return p, nil
}

// TestimonialsAbout is the cross-document read: testimonial content lives
// on each contributor's document, so finding everything written about one
// owner means scanning other profiles' testimonials arrays. A contributor
// list from the reverse index narrows the scan when available.
func (r *mongoProfileRepo) TestimonialsAbout(ctx context.Context, owner string, contributors []string) ([]profile.TestimonialView, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	match := bson.M{"testimonials.about": owner}
	if contributors != nil {
		match["username"] = bson.M{"$in": contributors}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$testimonials"}},
		{{Key: "$match", Value: bson.M{"testimonials.about": owner}}},
		{{Key: "$project", Value: bson.M{
			"_id":         "$testimonials._id",
			"username":    "$username",
			"title":       "$testimonials.title",
			"description": "$testimonials.description",
			"date":        "$testimonials.date",
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperror.NewUnavailable("failed to query testimonials", err)
	}
	defer cur.Close(ctx)

	views := make([]profile.TestimonialView, 0)
	if err := cur.All(ctx, &views); err != nil {
		return nil, apperror.NewInternal("failed to decode testimonials", err)
	}
	return views, nil
}

func (r *mongoProfileRepo) SetPinned(ctx context.Context, owner string, usernames []string) (*profile.UpsertResult, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": owner},
		bson.M{"$set": bson.M{
			"pinnedTestimonials": usernames,
			"updatedAt":          time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, apperror.NewUnavailable("failed to replace pinned testimonials", err)
	}
	return toUpsertResult(res), nil
}

func (r *mongoProfileRepo) Pin(ctx context.Context, owner, contributor string) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	// $addToSet keyed by the single username being toggled: no
	// read-modify-write cycle, so concurrent toggles cannot lose writes.
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"username": owner},
		bson.M{
			"$addToSet": bson.M{"pinnedTestimonials": contributor},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return apperror.NewUnavailable("failed to pin testimonial", err)
	}
	return nil
}

func (r *mongoProfileRepo) Unpin(ctx context.Context, owner, contributor string) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"username": owner},
		bson.M{
			"$pull": bson.M{"pinnedTestimonials": contributor},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return apperror.NewUnavailable("failed to unpin testimonial", err)
	}
	return nil
}
