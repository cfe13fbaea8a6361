package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/flare/internal/api/middleware"
	"github.com/d60-Lab/flare/internal/service"
	"github.com/d60-Lab/flare/pkg/response"
)

type createPostRequest struct {
	Title        string   `json:"title" binding:"required,max=255"`
	Description  string   `json:"description"`
	LocationName string   `json:"location_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Tags         []string `json:"tags"`
	Mood         string   `json:"mood"`
	TimeHint     string   `json:"time_hint"`
	TTLHours     int      `json:"ttl_hours"`
}

// CreatePost 发布动态
// @Summary 发布动态
// @Tags 动态
// @Accept json
// @Produce json
// @Param request body createPostRequest true "动态内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.posts.CreatePost(c.Request.Context(), service.CreatePostInput{
		UserID:       middleware.UserID(c),
		Title:        req.Title,
		Description:  req.Description,
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Tags:         req.Tags,
		Mood:         req.Mood,
		TimeHint:     req.TimeHint,
		TTLHours:     req.TTLHours,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, post)
}

// GetPost 查询动态
// @Summary 查询动态
// @Tags 动态
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, post)
}

type reactRequest struct {
	ReactionType string `json:"reaction_type" binding:"required,reaction"`
}

// React 对动态加/取消反应
// @Summary 反应（再次调用取消）
// @Tags 动态
// @Accept json
// @Produce json
// @Param id path string true "动态ID"
// @Param request body reactRequest true "反应类型"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/react [post]
func (h *Handler) React(c *gin.Context) {
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	added, err := h.posts.ToggleReaction(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.ReactionType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrOwnReaction),
			errors.Is(err, service.ErrPostNotActive),
			errors.Is(err, service.ErrInvalidReaction):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	action := "removed"
	if added {
		action = "added"
	}
	response.Success(c, gin.H{"action": action})
}

type invitePostRequest struct {
	InviteeID string `json:"invitee_id" binding:"required"`
}

// InvitePost 邀请好友查看动态
// @Summary 发出动态邀请
// @Tags 动态
// @Accept json
// @Produce json
// @Param id path string true "动态ID"
// @Param request body invitePostRequest true "被邀请人"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/invite [post]
func (h *Handler) InvitePost(c *gin.Context) {
	var req invitePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	inv, err := h.invitations.Create(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.InviteeID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, inv)
}

// PromptConversion 显式触发转化提示
// @Summary 转化提示
// @Tags 转化
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/conversion/prompt [post]
func (h *Handler) PromptConversion(c *gin.Context) {
	elig, err := h.posts.PromptConversion(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrPostNotActive):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, elig)
}

// PreviewConversion 转化预览
// @Summary 转化预览
// @Tags 转化
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/conversion/preview [get]
func (h *Handler) PreviewConversion(c *gin.Context) {
	preview, err := h.conversions.PreviewConversion(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, preview)
}

type convertPostRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	LocationName string    `json:"location_name"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	MaxAttendees int       `json:"max_attendees"`
	Price        float64   `json:"price" binding:"gte=0"`
	Tags         []string  `json:"tags"`
}

// ConvertPost 将动态转化为活动
// @Summary 转化为活动
// @Tags 转化
// @Accept json
// @Produce json
// @Param id path string true "动态ID"
// @Param request body convertPostRequest true "活动信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/convert [post]
func (h *Handler) ConvertPost(c *gin.Context) {
	var req convertPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	host, err := h.users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Unauthorized(c, "unknown user")
		return
	}
	activity, err := h.conversions.ConvertToActivity(c.Request.Context(), c.Param("id"), service.ConvertInput{
		Title:        req.Title,
		Description:  req.Description,
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		MaxAttendees: req.MaxAttendees,
		Price:        req.Price,
		Tags:         req.Tags,
	}, host)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotEligible):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, activity)
}
