package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	testimonialUC "github.com/linkforge/profile-hub/internal/application/usecase/testimonial"
	"github.com/linkforge/profile-hub/pkg/apperror"
)

type TestimonialHandler struct {
	useCase *testimonialUC.UseCase
}

func NewTestimonialHandler(uc *testimonialUC.UseCase) *TestimonialHandler {
	return &TestimonialHandler{useCase: uc}
}

func (h *TestimonialHandler) ListTestimonials(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	views, err := h.useCase.ListForOwner(c.Request.Context(), username)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ReplacePinned takes a bare JSON array of usernames and makes it the
// complete pin set.
func (h *TestimonialHandler) ReplacePinned(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	var usernames []string
	if err := c.ShouldBindJSON(&usernames); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for pinned testimonials", err))
		return
	}

	res, err := h.useCase.SetPinned(c.Request.Context(), username, usernames)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *TestimonialHandler) PinTestimonial(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	if err := h.useCase.Pin(c.Request.Context(), username, c.Param("username")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pinned": c.Param("username")})
}

func (h *TestimonialHandler) UnpinTestimonial(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	if err := h.useCase.Unpin(c.Request.Context(), username, c.Param("username")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unpinned": c.Param("username")})
}

// AddTestimonial records a testimonial the authenticated user writes
// about another profile.
func (h *TestimonialHandler) AddTestimonial(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	var req TestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for testimonial", err))
		return
	}

	res, err := h.useCase.Add(c.Request.Context(), username, req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}
