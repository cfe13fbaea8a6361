package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/flare/internal/api/middleware"
	"github.com/d60-Lab/flare/internal/search"
	"github.com/d60-Lab/flare/pkg/response"
)

type searchRequest struct {
	Query       string `form:"q" binding:"required"`
	RadiusKm    *int   `form:"radius" binding:"omitempty,gt=0"`
	ContentType string `form:"type" binding:"contenttype"`
}

// Search 搜索动态与活动
// @Summary 搜索
// @Tags 搜索
// @Param q query string true "搜索词"
// @Param radius query int false "半径（公里）"
// @Param type query string false "内容类型" Enums(all, posts, events) default(all)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/search [get]
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.ContentType == "" {
		req.ContentType = search.ContentAll
	}

	user, err := h.users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Unauthorized(c, "unknown user")
		return
	}

	results, err := h.search.Search(c.Request.Context(), req.Query, user, req.RadiusKm, req.ContentType)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(results), "results": results})
}
