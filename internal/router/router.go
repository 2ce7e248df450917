package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/movierank/internal/handler"
	"github.com/user/movierank/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 公开页面 ====================
	public := r.Group("/")
	public.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		public.GET("", h.Explore)
		public.GET("explore/:id", h.UserProfile)
	}

	// ==================== 认证页面 ====================
	auth := r.Group("/")
	auth.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		auth.GET("login", h.LoginPage)
		auth.POST("login", h.Login)
		auth.GET("register", h.RegisterPage)
		auth.POST("register", h.Register)
		auth.POST("logout", h.Logout)
	}

	// ==================== 榜单维护（需要登录）====================
	movies := r.Group("/")
	movies.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		movies.GET("mymovies", h.MyMovies)
		movies.GET("add", h.AddPage)
		movies.POST("add", h.AddSearch)
		movies.GET("select", h.Select)
		movies.GET("edit", h.EditPage)
		movies.POST("edit", h.Edit)
		movies.GET("delete", h.Delete)
		movies.POST("like/:id", h.Like)
	}

	// ==================== JSON API ====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		api.POST("/like/:id", h.ToggleLike)
		api.GET("/likes/:id/count", h.LikeCount)
		api.GET("/movies/suggest", h.MovieSuggest)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	// 模板函数
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"index_int": func(m map[int]int64, key int) int64 {
			return m[key]
		},
		"liked": func(m map[int]bool, key int) bool {
			return m[key]
		},
	}

	// 注册所有页面模板
	pages := []string{
		"explore", "profile", "404",
		"mymovies", "add", "select", "edit",
		"login", "register",
	}

	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	return r
}
