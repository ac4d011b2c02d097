package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	milestoneUC "github.com/linkforge/profile-hub/internal/application/usecase/milestone"
	"github.com/linkforge/profile-hub/pkg/apperror"
)

type MilestoneHandler struct {
	useCase *milestoneUC.UseCase
}

func NewMilestoneHandler(uc *milestoneUC.UseCase) *MilestoneHandler {
	return &MilestoneHandler{useCase: uc}
}

func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	m, err := h.useCase.Get(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MilestoneHandler) AddMilestone(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	var req MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for milestone", err))
		return
	}

	res, err := h.useCase.Add(c.Request.Context(), username, req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *MilestoneHandler) UpdateMilestone(c *gin.Context) {
	username, ok := GetUsernameFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("username not found in context"))
		return
	}

	var req MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for milestone", err))
		return
	}

	res, err := h.useCase.Update(c.Request.Context(), username, c.Param("id"), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}
