package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linkforge/profile-hub/internal/domain/profile"
	"github.com/linkforge/profile-hub/pkg/apperror"
	"github.com/linkforge/profile-hub/pkg/logger"
)

// SubCollectionRepo is the generic engine over one array field of the
// profile document. E is the element type (Event, Milestone, Testimonial);
// the field name selects which embedded array the operations target.
//
// The store offers no primitive to address a nested array element
// directly, so GetOne emulates one with a four-stage pipeline executed as
// a single read: match the parent by username, unwind the array, match
// the element id, then promote the element to the result root.
type SubCollectionRepo[E any, PE profile.SubEntity[E]] struct {
	coll     *mongo.Collection
	field    string
	resource string
	timeout  time.Duration
	logger   logger.Logger
}

func NewSubCollectionRepo[E any, PE profile.SubEntity[E]](db *mongo.Database, field, resource string, timeout time.Duration, log logger.Logger) *SubCollectionRepo[E, PE] {
	return &SubCollectionRepo[E, PE]{
		coll:     db.Collection(ProfilesCollection),
		field:    field,
		resource: resource,
		timeout:  timeout,
		logger:   log,
	}
}

func parseObjectID(token string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(token)
	if err != nil {
		return primitive.NilObjectID, apperror.NewInvalidID(token)
	}
	return oid, nil
}

func (r *SubCollectionRepo[E, PE]) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SubCollectionRepo[E, PE]) GetOne(ctx context.Context, username, id string) (*E, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$unwind", Value: "$" + r.field}},
		{{Key: "$match", Value: bson.M{r.field + "._id": oid}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$" + r.field}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperror.NewUnavailable("failed to query "+r.field, err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, apperror.NewUnavailable("failed to read "+r.field+" cursor", err)
		}
		return nil, apperror.NewNotFound(r.resource, id)
	}

	out := new(E)
	if err := cur.Decode(out); err != nil {
		return nil, apperror.NewInternal("failed to decode "+r.resource, err)
	}
	return out, nil
}

// Add appends the entity to the array, creating the profile document on
// first touch. The element id is assigned here, at insertion time.
func (r *SubCollectionRepo[E, PE]) Add(ctx context.Context, username string, entity *E) (*profile.UpsertResult, error) {
	PE(entity).SetEntityID(primitive.NewObjectID())

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{
			"$push": bson.M{r.field: entity},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, apperror.NewUnavailable("failed to add "+r.resource, err)
	}
	return toUpsertResult(res), nil
}

// Update replaces the addressed element wholesale. It deliberately does
// not upsert: an update of an id that matches nothing must surface as
// NotFound, not vanish as a vacuous success.
func (r *SubCollectionRepo[E, PE]) Update(ctx context.Context, username, id string, entity *E) (*profile.UpsertResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	// The element keeps its identity across replacement.
	PE(entity).SetEntityID(oid)

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username, r.field + "._id": oid},
		bson.M{"$set": bson.M{
			r.field + ".$": entity,
			"updatedAt":    time.Now().UTC(),
		}},
	)
	if err != nil {
		return nil, apperror.NewUnavailable("failed to update "+r.resource, err)
	}
	if res.MatchedCount == 0 {
		return nil, apperror.NewNotFound(r.resource, id)
	}
	return toUpsertResult(res), nil
}

func toUpsertResult(res *mongo.UpdateResult) *profile.UpsertResult {
	out := &profile.UpsertResult{
		Matched:  res.MatchedCount,
		Modified: res.ModifiedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = oid.Hex()
	}
	return out
}
