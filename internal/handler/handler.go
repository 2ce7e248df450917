package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/movierank/internal/config"
	"github.com/user/movierank/internal/middleware"
	"github.com/user/movierank/internal/model"
	"github.com/user/movierank/internal/repository"
	"github.com/user/movierank/internal/service"
)

// Handler HTTP 处理器
type Handler struct {
	Repos      *repository.Repositories
	Config     *config.Config
	Catalog    *service.CatalogClient
	Collection *service.CollectionService
	Social     *service.SocialService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	catalog := service.NewCatalogClient(cfg)

	return &Handler{
		Repos:      repos,
		Config:     cfg,
		Catalog:    catalog,
		Collection: service.NewCollectionService(cfg, repos.Movie, catalog),
		Social:     service.NewSocialService(repos.Like),
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	// 基础数据
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
	}

	// 注入用户信息
	session := sessions.Default(c)
	if userinfo := session.Get("userinfo"); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok {
			res["UserInfo"] = su
		}
	}

	// 合并传入的数据
	for k, v := range data {
		res[k] = v
	}

	return res
}

// catalogContext 目录调用的超时上下文
func catalogContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

// rateForm 评分表单，评分范围 0-10
type rateForm struct {
	Rating float64 `form:"rating" binding:"required,gt=0,max=10"`
	Review string  `form:"review" binding:"required"`
}

// formError 把表单校验错误转成提示文案
func formError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Rating" {
				return "评分需要在 0 到 10 之间"
			}
			if fe.Field() == "Review" {
				return "写一句评论再提交"
			}
		}
	}
	return "表单内容有误，请检查后重试"
}

// ==================== 公开页面 ====================

// Explore 首页：所有用户和他们收到的点赞
func (h *Handler) Explore(c *gin.Context) {
	users, err := h.Repos.User.ListAll()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "explore.html", h.RenderData(c, gin.H{
			"Title": h.Config.SiteName,
			"Error": "加载用户列表失败",
		}))
		return
	}

	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	// 点赞数据挂了页面照常渲染，只是计数归零，这里记一笔方便排查
	counts, err := h.Social.CountForUsers(ids)
	if err != nil {
		log.Printf("[Explore] 统计点赞数失败: %v", err)
	}

	// 当前用户点赞过谁，用来渲染按钮状态
	liked := map[int]bool{}
	if uid := middleware.GetUserID(c); uid > 0 {
		if liked, err = h.Social.LikedTargets(uid); err != nil {
			log.Printf("[Explore] 读取点赞状态失败: %v", err)
			liked = map[int]bool{}
		}
	}

	c.HTML(http.StatusOK, "explore.html", h.RenderData(c, gin.H{
		"Title":      h.Config.SiteName + " - 探索",
		"Users":      users,
		"LikeCounts": counts,
		"Liked":      liked,
	}))
}

// UserProfile 用户榜单页
func (h *Handler) UserProfile(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderNotFound(c)
		return
	}

	user, err := h.Repos.User.FindByID(id)
	if err != nil || user == nil {
		h.renderNotFound(c)
		return
	}

	movies, err := h.Collection.ListRanked(user.ID)
	if err != nil {
		movies = nil
	}
	likeCount, _ := h.Social.LikeCount(user.ID)

	isLiked := false
	if uid := middleware.GetUserID(c); uid > 0 {
		isLiked, _ = h.Social.Liked(uid, user.ID)
	}

	c.HTML(http.StatusOK, "profile.html", h.RenderData(c, gin.H{
		"Title":     user.Username + " 的榜单 - " + h.Config.SiteName,
		"Owner":     user,
		"Movies":    movies,
		"LikeCount": likeCount,
		"IsLiked":   isLiked,
	}))
}

func (h *Handler) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
		"Title": "页面未找到 - " + h.Config.SiteName,
	}))
}

// ==================== 我的榜单 ====================

// MyMovies 我的榜单页，读取时顺带重排名次
func (h *Handler) MyMovies(c *gin.Context) {
	userID := middleware.GetUserID(c)

	movies, err := h.Collection.ListRanked(userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "mymovies.html", h.RenderData(c, gin.H{
			"Title": "我的榜单 - " + h.Config.SiteName,
			"Error": "加载榜单失败，请刷新重试",
		}))
		return
	}

	var errMsg string
	switch c.Query("error") {
	case "full":
		errMsg = "榜单最多放 10 部电影，先删掉一部再加。"
	case "catalog":
		errMsg = "电影资料暂时拉取不到，稍后再试。"
	case "save":
		errMsg = "保存失败，请稍后重试。"
	}

	c.HTML(http.StatusOK, "mymovies.html", h.RenderData(c, gin.H{
		"Title":  "我的榜单 - " + h.Config.SiteName,
		"Movies": movies,
		"Count":  len(movies),
		"Limit":  repository.CollectionLimit,
		"Error":  errMsg,
	}))
}

// AddPage 搜索表单页
func (h *Handler) AddPage(c *gin.Context) {
	c.HTML(http.StatusOK, "add.html", h.RenderData(c, gin.H{
		"Title": "添加电影 - " + h.Config.SiteName,
	}))
}

// AddSearch 按标题搜索目录，展示候选列表
// 目录不可用时降级为空结果加重试提示，而不是报错页
func (h *Handler) AddSearch(c *gin.Context) {
	query := c.PostForm("movie")
	if query == "" {
		c.Redirect(http.StatusFound, "/add")
		return
	}

	ctx, cancel := catalogContext(c)
	defer cancel()

	results, err := h.Catalog.SearchByTitle(ctx, query)
	data := gin.H{
		"Title":   "选择电影 - " + h.Config.SiteName,
		"Query":   query,
		"Results": results,
	}
	if err != nil {
		data["Results"] = nil
		data["Error"] = "电影目录暂时不可用，请稍后重试。"
	}

	c.HTML(http.StatusOK, "select.html", h.RenderData(c, data))
}

// Select 从候选里挑一部直接入榜（未评分）
func (h *Handler) Select(c *gin.Context) {
	catalogID, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.Redirect(http.StatusFound, "/add")
		return
	}
	userID := middleware.GetUserID(c)

	// 先看容量，满了不必再打目录接口；插入本身还会原子复查
	if count, err := h.Collection.Count(userID); err == nil && count >= repository.CollectionLimit {
		c.Redirect(http.StatusFound, "/mymovies?error=full")
		return
	}

	ctx, cancel := catalogContext(c)
	defer cancel()

	_, err = h.Collection.AddFromCatalog(ctx, userID, catalogID, nil)
	switch {
	case errors.Is(err, repository.ErrCollectionFull):
		c.Redirect(http.StatusFound, "/mymovies?error=full")
	case errors.Is(err, service.ErrCatalogUnavailable):
		c.Redirect(http.StatusFound, "/mymovies?error=catalog")
	default:
		c.Redirect(http.StatusFound, "/mymovies")
	}
}

// EditPage 评分表单页
// 带 id 是给已有条目打分，带 ids 是搜索后加片并直接打分
func (h *Handler) EditPage(c *gin.Context) {
	userID := middleware.GetUserID(c)

	data := gin.H{
		"Title": "打分 - " + h.Config.SiteName,
	}

	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			h.renderNotFound(c)
			return
		}
		movie, err := h.Collection.Get(userID, id)
		if err != nil {
			// 不存在和别人的条目一视同仁，静默回榜单
			c.Redirect(http.StatusFound, "/mymovies")
			return
		}
		data["Movie"] = movie
		data["ID"] = movie.ID
	} else if ids := c.Query("ids"); ids != "" {
		data["IDS"] = ids
	}

	c.HTML(http.StatusOK, "edit.html", h.RenderData(c, data))
}

// Edit 提交评分
func (h *Handler) Edit(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var form rateForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "edit.html", h.RenderData(c, gin.H{
			"Title": "打分 - " + h.Config.SiteName,
			"Error": formError(err),
			"ID":    c.Query("id"),
			"IDS":   c.Query("ids"),
		}))
		return
	}

	info := &service.RatingInfo{Rating: form.Rating, Review: form.Review}

	// 加片并打分的合并流程
	if idsStr := c.Query("ids"); idsStr != "" {
		catalogID, err := strconv.Atoi(idsStr)
		if err != nil {
			c.Redirect(http.StatusFound, "/mymovies")
			return
		}

		ctx, cancel := catalogContext(c)
		defer cancel()

		_, err = h.Collection.AddFromCatalog(ctx, userID, catalogID, info)
		switch {
		case errors.Is(err, repository.ErrCollectionFull):
			c.Redirect(http.StatusFound, "/mymovies?error=full")
		case errors.Is(err, service.ErrCatalogUnavailable):
			c.Redirect(http.StatusFound, "/mymovies?error=catalog")
		default:
			c.Redirect(http.StatusFound, "/mymovies")
		}
		return
	}

	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.Redirect(http.StatusFound, "/mymovies")
		return
	}

	// 条目不存在或不属于自己时不动任何数据，直接回榜单
	// 其他存储错误要给用户提示，不能装作保存成功
	_, err = h.Collection.UpdateMovie(userID, id, form.Rating, form.Review)
	if err != nil && !errors.Is(err, repository.ErrMovieNotFound) {
		log.Printf("[Edit] 保存评分失败: %v", err)
		c.Redirect(http.StatusFound, "/mymovies?error=save")
		return
	}
	c.Redirect(http.StatusFound, "/mymovies")
}

// Delete 删除条目
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if id, err := strconv.Atoi(c.Query("id")); err == nil {
		// 删不存在的条目是 no-op
		_ = h.Collection.DeleteMovie(userID, id)
	}

	c.Redirect(http.StatusFound, "/mymovies")
}

// Like 点赞表单提交，处理完回到来源页
func (h *Handler) Like(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err == nil {
		_, _ = h.Social.Toggle(middleware.GetUserID(c), targetID)
	}

	back := c.Request.Referer()
	if back == "" {
		back = "/"
	}
	c.Redirect(http.StatusFound, back)
}
