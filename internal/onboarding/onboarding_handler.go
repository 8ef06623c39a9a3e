package onboarding

import (
	"net/http"

	"go-onboarding/internal/domain"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("onboarding.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("onboarding.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("onboarding request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("onboarding_id", c.Param("id")),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// hrActor reads the identity AuthMiddleware put on the context.
func hrActor(c *gin.Context) domain.Actor {
	return domain.Actor{
		Type:  domain.ActorHR,
		ID:    c.GetString("user_id"),
		Name:  c.GetString("name"),
		Email: c.GetString("email"),
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), hrActor(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	meta := response.NewPaginationMeta(total, page, size)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) Summary(c *gin.Context) {
	resp, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	resp, err := h.service.ListAuditLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ResendInvite(c *gin.Context) {
	resp, err := h.service.ResendInvite(c.Request.Context(), hrActor(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RequestModification(c *gin.Context) {
	var req RequestModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.RequestModification(c.Request.Context(), hrActor(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ConfirmDetails(c *gin.Context) {
	resp, err := h.service.ConfirmDetails(c.Request.Context(), hrActor(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), hrActor(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Terminate(c *gin.Context) {
	var req TerminateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Terminate(c.Request.Context(), hrActor(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Restore(c *gin.Context) {
	resp, err := h.service.Restore(c.Request.Context(), hrActor(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CompleteForm(c *gin.Context) {
	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CompleteForm(c.Request.Context(), hrActor(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), hrActor(c), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
