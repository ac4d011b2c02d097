package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkforge/profile-hub/internal/domain/profile"
)

const testimonialIndexTTL = time.Hour

// redisTestimonialIndex keeps a set per profile of the usernames that
// wrote a testimonial about it, so the reverse read does not fan out into
// a full collection scan. An empty set is indistinguishable from a miss;
// both rebuild from the store, which keeps the index self-healing.
type redisTestimonialIndex struct {
	rdb *redis.Client
}

func NewRedisTestimonialIndex(rdb *redis.Client) profile.TestimonialIndex {
	return &redisTestimonialIndex{rdb: rdb}
}

func indexKey(owner string) string {
	return "testimonials:about:" + owner
}

func (i *redisTestimonialIndex) Contributors(ctx context.Context, owner string) ([]string, bool, error) {
	members, err := i.rdb.SMembers(ctx, indexKey(owner)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("read testimonial index for %s: %w", owner, err)
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	return members, true, nil
}

func (i *redisTestimonialIndex) ReplaceContributors(ctx context.Context, owner string, contributors []string) error {
	key := indexKey(owner)
	pipe := i.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(contributors) > 0 {
		members := make([]any, len(contributors))
		for n, c := range contributors {
			members[n] = c
		}
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, testimonialIndexTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild testimonial index for %s: %w", owner, err)
	}
	return nil
}

func (i *redisTestimonialIndex) AddContributor(ctx context.Context, owner, contributor string) error {
	key := indexKey(owner)
	// Only extend an index that is already populated. Adding to an absent
	// set would make it look complete when it holds a single contributor.
	exists, err := i.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check testimonial index for %s: %w", owner, err)
	}
	if exists == 0 {
		return nil
	}
	pipe := i.rdb.TxPipeline()
	pipe.SAdd(ctx, key, contributor)
	pipe.Expire(ctx, key, testimonialIndexTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update testimonial index for %s: %w", owner, err)
	}
	return nil
}
