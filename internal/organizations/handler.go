package organizations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/auth"
	"perfsuite/dashboard/dashboard-backend/pkg/response"
)

// Handler handles HTTP requests for organization, team and performer records
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new organizations handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers routes on a group that already requires a user
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/organization", h.getOrganization)
	router.PUT("/organization", h.updateOrganization)

	teams := router.Group("/teams")
	{
		teams.GET("", h.listTeams)
		teams.POST("", h.createTeam)
		teams.DELETE("/:id", h.deleteTeam)
		teams.POST("/:id/members", h.addTeamMember)
	}

	performers := router.Group("/performers")
	{
		performers.GET("", h.listPerformers)
		performers.POST("", h.createPerformer)
	}
}

// getOrganization handles GET /api/organization
func (h *Handler) getOrganization(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	org, err := h.service.GetOrganization(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "Failed to get organization", err)
		return
	}
	response.OK(c, http.StatusOK, org)
}

// updateOrganization handles PUT /api/organization
func (h *Handler) updateOrganization(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	org, err := h.service.UpdateOrganization(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, "Failed to update organization", err)
		return
	}
	response.OK(c, http.StatusOK, org)
}

// listTeams handles GET /api/teams
func (h *Handler) listTeams(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	teams, err := h.service.ListTeams(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "Failed to list teams", err)
		return
	}
	response.OK(c, http.StatusOK, teams)
}

// createTeam handles POST /api/teams
func (h *Handler) createTeam(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	team, err := h.service.CreateTeam(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, "Failed to create team", err)
		return
	}
	response.OK(c, http.StatusCreated, team)
}

// deleteTeam handles DELETE /api/teams/:id
func (h *Handler) deleteTeam(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid team ID")
		return
	}
	if err := h.service.DeleteTeam(c.Request.Context(), userID, teamID); err != nil {
		h.fail(c, "Failed to delete team", err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"status": "deleted"})
}

// addTeamMember handles POST /api/teams/:id/members
func (h *Handler) addTeamMember(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid team ID")
		return
	}
	var req AddTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	member, err := h.service.AddTeamMember(c.Request.Context(), userID, teamID, req)
	if err != nil {
		h.fail(c, "Failed to add team member", err)
		return
	}
	response.OK(c, http.StatusCreated, member)
}

// listPerformers handles GET /api/performers
func (h *Handler) listPerformers(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	performers, err := h.service.ListPerformers(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "Failed to list performers", err)
		return
	}
	response.OK(c, http.StatusOK, performers)
}

// createPerformer handles POST /api/performers
func (h *Handler) createPerformer(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req CreatePerformerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	performer, err := h.service.CreatePerformer(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, "Failed to create performer", err)
		return
	}
	response.OK(c, http.StatusCreated, performer)
}

// userID resolves the caller; ids are issued by this service so a malformed one is unauthenticated
func (h *Handler) userID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := auth.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthenticated")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "unauthenticated")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrOrganizationRequired):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		response.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		response.Fail(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error(msg, zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
