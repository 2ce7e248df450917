package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/movierank/internal/middleware"
	"github.com/user/movierank/internal/service"
	"github.com/user/movierank/internal/utils"
)

// ToggleLike 点赞切换接口，返回切换后的状态和最新计数
func (h *Handler) ToggleLike(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的用户 ID")
		return
	}

	if target, err := h.Repos.User.FindByID(targetID); err != nil || target == nil {
		utils.NotFound(c, "用户不存在")
		return
	}

	liked, err := h.Social.Toggle(userID, targetID)
	if err != nil {
		if errors.Is(err, service.ErrSelfLike) {
			utils.BadRequest(c, "不能给自己点赞")
			return
		}
		utils.Error(c, 500, "操作失败，请重试")
		return
	}

	count, _ := h.Social.LikeCount(targetID)
	utils.Success(c, gin.H{
		"liked": liked,
		"count": count,
	})
}

// LikeCount 点赞计数接口
func (h *Handler) LikeCount(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的用户 ID")
		return
	}

	count, err := h.Social.LikeCount(targetID)
	if err != nil {
		utils.Error(c, 500, "查询失败")
		return
	}

	utils.Success(c, gin.H{"count": count})
}

// MovieSuggest 搜索联想接口
func (h *Handler) MovieSuggest(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.Success(c, []service.CatalogSearchResult{})
		return
	}

	ctx, cancel := catalogContext(c)
	defer cancel()

	results, err := h.Catalog.SearchByTitle(ctx, query)
	if err != nil {
		// 目录故障降级为空列表，前端提示重试
		utils.ServiceUnavailable(c, "电影目录暂时不可用")
		return
	}

	utils.Success(c, results)
}
