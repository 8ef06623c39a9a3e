package onboarding

import (
	"net/http"

	"go-onboarding/internal/middleware"
	onboardingerrors "go-onboarding/internal/onboarding/errors"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EmployeeHandler struct {
	service EmployeeService
	secure  bool
	logger  *zap.Logger
}

func NewEmployeeHandler(service EmployeeService, secureCookies bool, logger ...*zap.Logger) *EmployeeHandler {
	l := zap.L().Named("onboarding.employee_handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("onboarding.employee_handler")
	}
	return &EmployeeHandler{service: service, secure: secureCookies, logger: l}
}

func (h *EmployeeHandler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("employee onboarding request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// credential reads what EmployeeSession put on the context.
func credential(c *gin.Context) (EmployeeCredential, bool) {
	id, ok := c.Get(middleware.ContextOnboardingID)
	if !ok {
		return EmployeeCredential{}, false
	}
	oid, ok := id.(uuid.UUID)
	if !ok {
		return EmployeeCredential{}, false
	}
	return EmployeeCredential{
		OnboardingID: oid.String(),
		InviteHash:   c.GetString(middleware.ContextInviteHash),
	}, true
}

func (h *EmployeeHandler) VerifyInvite(c *gin.Context) {
	var req VerifyInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.VerifyInvite(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *EmployeeHandler) VerifyOtp(c *gin.Context) {
	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, cookie, err := h.service.VerifyOtp(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Path:     "/",
		Expires:  cookie.ExpiresAt,
		MaxAge:   cookie.MaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *EmployeeHandler) GetOnboarding(c *gin.Context) {
	cred, ok := credential(c)
	if !ok {
		h.writeServiceError(c, onboardingerrors.ErrSessionInvalid)
		return
	}

	resp, err := h.service.GetOnboarding(c.Request.Context(), cred)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *EmployeeHandler) SaveForm(c *gin.Context) {
	cred, ok := credential(c)
	if !ok {
		h.writeServiceError(c, onboardingerrors.ErrSessionInvalid)
		return
	}

	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.SaveForm(c.Request.Context(), cred, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *EmployeeHandler) Submit(c *gin.Context) {
	cred, ok := credential(c)
	if !ok {
		h.writeServiceError(c, onboardingerrors.ErrSessionInvalid)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), cred)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
