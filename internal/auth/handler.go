package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/pkg/requestmeta"
	"perfsuite/dashboard/dashboard-backend/pkg/response"
)

type Handler struct {
	service *Service
	policy  requestmeta.SchemePolicy
	logger  *zap.Logger
}

func NewHandler(s *Service, policy requestmeta.SchemePolicy, logger *zap.Logger) *Handler {
	return &Handler{service: s, policy: policy, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /api/auth/sign-up
func (h *Handler) SignUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.service.SignUp(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, ErrEmailTaken):
		response.Fail(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("Failed to sign up", zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, "sign-up failed")
		return
	}

	h.writeSession(c, session)
	response.OK(c, http.StatusCreated, session)
}

// SignIn handles POST /api/auth/sign-in
func (h *Handler) SignIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("Failed to sign in", zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, "sign-in failed")
		return
	}

	h.writeSession(c, session)
	response.OK(c, http.StatusOK, session)
}

// SignOut handles POST /api/auth/sign-out
func (h *Handler) SignOut(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(c.Request, h.policy),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	response.OK(c, http.StatusOK, gin.H{"signedOut": true})
}

func (h *Handler) writeSession(c *gin.Context, session *Session) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(c.Request, h.policy),
		SameSite: http.SameSiteLaxMode,
	})
}
