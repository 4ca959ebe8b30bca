package onboarding

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/auth"
	"perfsuite/dashboard/dashboard-backend/pkg/response"
)

// StatusPath is the route of the onboarding status endpoint under /api
const StatusPath = "/onboarding/status"

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET(StatusPath, h.getStatus)
}

// getStatus handles GET /api/onboarding/status
func (h *Handler) getStatus(c *gin.Context) {
	raw, ok := auth.UserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		response.Fail(c, http.StatusNotFound, ErrUserNotFound.Error())
		return
	}

	status, err := h.service.Status(c.Request.Context(), userID)
	if errors.Is(err, ErrUserNotFound) {
		response.Fail(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("Failed to compute onboarding status", zap.Error(err), zap.String("user_id", raw))
		response.Fail(c, http.StatusInternalServerError, "failed to compute onboarding status")
		return
	}

	response.OK(c, http.StatusOK, status)
}
