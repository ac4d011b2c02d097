package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	eventUC "github.com/linkforge/profile-hub/internal/application/usecase/event"
	"github.com/linkforge/profile-hub/pkg/apperror"
)

type EventHandler struct {
	useCase *eventUC.UseCase
}

func NewEventHandler(uc *eventUC.UseCase) *EventHandler {
	return &EventHandler{useCase: uc}
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	ev, err := h.useCase.Get(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *EventHandler) AddEvent(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for event", err))
		return
	}

	res, err := h.useCase.Add(c.Request.Context(), username, req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for event", err))
		return
	}

	res, err := h.useCase.Update(c.Request.Context(), username, c.Param("id"), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}
