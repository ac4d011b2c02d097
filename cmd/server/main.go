package main

import (
	"context"
	"fmt"
	"log"

	kafkaEvent "github.com/linkforge/profile-hub/adapters/event"
	httpAdapter "github.com/linkforge/profile-hub/adapters/http"
	"github.com/linkforge/profile-hub/adapters/persistence"
	eventUC "github.com/linkforge/profile-hub/internal/application/usecase/event"
	milestoneUC "github.com/linkforge/profile-hub/internal/application/usecase/milestone"
	testimonialUC "github.com/linkforge/profile-hub/internal/application/usecase/testimonial"
	"github.com/linkforge/profile-hub/internal/config"
	"github.com/linkforge/profile-hub/internal/domain/profile"
	"github.com/linkforge/profile-hub/pkg/auth"
	"github.com/linkforge/profile-hub/pkg/logger"
	"github.com/linkforge/profile-hub/pkg/tracing"
)

func main() {
	fmt.Println("Start Profile Hub API Server...")

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "profile-hub-api")
		if err != nil {
			appLogger.Fatal("cannot init tracing", err)
		}
		defer tracing.Shutdown(context.Background(), tp, appLogger)
	}

	// Initialize dependencies
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

	kafkaClient, err := kafkaEvent.NewKafkaProducerClient(cfg)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	eventRepo := persistence.NewSubCollectionRepo[profile.Event](db, "events", "event", cfg.Mongo.Timeout, appLogger)
	milestoneRepo := persistence.NewSubCollectionRepo[profile.Milestone](db, "milestones", "milestone", cfg.Mongo.Timeout, appLogger)
	testimonialRepo := persistence.NewSubCollectionRepo[profile.Testimonial](db, "testimonials", "testimonial", cfg.Mongo.Timeout, appLogger)
	profileRepo := persistence.NewMongoProfileRepo(db, cfg.Mongo.Timeout, appLogger)
	testimonialIndex := persistence.NewRedisTestimonialIndex(redisClient)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	// Use Cases
	eventUseCase := eventUC.NewUseCase(eventRepo, kafkaClient, appLogger)
	milestoneUseCase := milestoneUC.NewUseCase(milestoneRepo, kafkaClient, appLogger)
	testimonialUseCase := testimonialUC.NewUseCase(profileRepo, testimonialRepo, testimonialIndex, kafkaClient, appLogger)

	// HTTP Handlers
	eventHandler := httpAdapter.NewEventHandler(eventUseCase)
	milestoneHandler := httpAdapter.NewMilestoneHandler(milestoneUseCase)
	testimonialHandler := httpAdapter.NewTestimonialHandler(testimonialUseCase)

	router := httpAdapter.NewRouter(appLogger, jwtSvc, eventHandler, milestoneHandler, testimonialHandler)

	appLogger.Info("Server running on port " + cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		appLogger.Fatal("cannot run server", err)
	}
}
