package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkaEvent "github.com/linkforge/profile-hub/adapters/event"
	"github.com/linkforge/profile-hub/adapters/persistence"
	"github.com/linkforge/profile-hub/internal/config"
	"github.com/linkforge/profile-hub/pkg/logger"
)

// The worker reconciles the Redis reverse index from the profile change
// stream: whenever someone writes a testimonial, the contributor set of
// the referenced profile is recomputed from the store.
func main() {
	fmt.Println("Starting Profile Hub Index Worker...")

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	mongoClient, err := persistence.NewMongoClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect MongoDB", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	profileRepo := persistence.NewMongoProfileRepo(db, cfg.Mongo.Timeout, appLogger)
	testimonialIndex := persistence.NewRedisTestimonialIndex(redisClient)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   kafkaEvent.TopicProfileEvents,
		GroupID: "profile-hub-index-worker",
	})
	defer reader.Close()

	ctx := context.Background()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			appLogger.Error("failed to read message", err)
			continue
		}

		var payload kafkaEvent.ProfileEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			appLogger.Warn("skipping malformed profile event", zap.Error(err))
			continue
		}

		if payload.Collection != "testimonials" || payload.About == "" {
			continue
		}

		views, err := profileRepo.TestimonialsAbout(ctx, payload.About, nil)
		if err != nil {
			appLogger.Error("failed to recompute contributors", err, zap.String("username", payload.About))
			continue
		}

		seen := make(map[string]struct{}, len(views))
		contributors := make([]string, 0, len(views))
		for _, v := range views {
			if _, dup := seen[v.Username]; dup {
				continue
			}
			seen[v.Username] = struct{}{}
			contributors = append(contributors, v.Username)
		}

		if err := testimonialIndex.ReplaceContributors(ctx, payload.About, contributors); err != nil {
			appLogger.Error("failed to rebuild testimonial index", err, zap.String("username", payload.About))
			continue
		}
		appLogger.Info("testimonial index rebuilt",
			zap.String("username", payload.About),
			zap.Int("contributors", len(contributors)),
		)
	}
}
