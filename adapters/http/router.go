package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkforge/profile-hub/pkg/auth"
	"github.com/linkforge/profile-hub/pkg/logger"
)

// NewRouter wires the route table. Kept out of main so the e2e tests can
// stand up the same surface against fakes.
func NewRouter(
	log logger.Logger,
	jwtSvc *auth.JWTService,
	eventHandler *EventHandler,
	milestoneHandler *MilestoneHandler,
	testimonialHandler *TestimonialHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(ErrorMiddleware(log))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		manage := api.Group("/account/manage")
		manage.Use(AuthMiddleware(jwtSvc))
		{
			events := manage.Group("/events")
			{
				events.GET("/:id", eventHandler.GetEvent)
				events.PUT("", eventHandler.AddEvent)
				events.PUT("/:id", eventHandler.UpdateEvent)
			}

			milestones := manage.Group("/milestones")
			{
				milestones.GET("/:id", milestoneHandler.GetMilestone)
				milestones.PUT("", milestoneHandler.AddMilestone)
				milestones.PUT("/:id", milestoneHandler.UpdateMilestone)
			}

			testimonials := manage.Group("/testimonials")
			{
				testimonials.GET("", testimonialHandler.ListTestimonials)
				testimonials.PUT("", testimonialHandler.ReplacePinned)
				testimonials.POST("", testimonialHandler.AddTestimonial)
				testimonials.POST("/pins/:username", testimonialHandler.PinTestimonial)
				testimonials.DELETE("/pins/:username", testimonialHandler.UnpinTestimonial)
			}
		}
	}

	return router
}
