package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/flare/internal/api/middleware"
	"github.com/d60-Lab/flare/internal/service"
	"github.com/d60-Lab/flare/pkg/response"
)

// ListNotifications 通知列表
// @Summary 通知列表
// @Tags 通知
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	list, err := h.notifications.List(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// UnreadCount 未读通知数
// @Summary 未读数
// @Tags 通知
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/unread [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead 标记已读（幂等）
// @Summary 标记已读
// @Tags 通知
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

type updatePreferenceRequest struct {
	Preference string `json:"preference" binding:"required,notifpref"`
}

// UpdateNotificationPreference 更新通知偏好
// @Summary 更新通知偏好
// @Tags 通知
// @Accept json
// @Produce json
// @Param request body updatePreferenceRequest true "偏好"
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/preference [put]
func (h *Handler) UpdateNotificationPreference(c *gin.Context) {
	var req updatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.users.UpdateNotificationPreference(c.Request.Context(), middleware.UserID(c), req.Preference); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
