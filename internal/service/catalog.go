package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/user/movierank/internal/config"
	"github.com/user/movierank/internal/utils"
	"golang.org/x/sync/singleflight"
)

// ErrCatalogUnavailable 目录服务不可用，调用方降级处理，不向用户报错崩溃
var ErrCatalogUnavailable = errors.New("movie catalog unavailable")

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// CatalogSearchResult 目录搜索候选
type CatalogSearchResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// CatalogDetail 目录电影详情，任意字段都可能为空串
type CatalogDetail struct {
	Title       string
	ReleaseDate string
	Overview    string
	PosterPath  string
}

// CatalogClient TMDB 目录客户端
type CatalogClient struct {
	config      *config.Config
	httpClient  *http.Client
	group       singleflight.Group
	searchCache *utils.TTLCache[[]CatalogSearchResult]
}

func NewCatalogClient(cfg *config.Config) *CatalogClient {
	return &CatalogClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		searchCache: utils.NewTTLCache[[]CatalogSearchResult](500, time.Hour),
	}
}

// SearchByTitle 按标题搜索目录，返回候选列表（按来源顺序）
func (c *CatalogClient) SearchByTitle(ctx context.Context, query string) ([]CatalogSearchResult, error) {
	if cached, ok := c.searchCache.Get(query); ok {
		return cached, nil
	}

	reqURL := fmt.Sprintf("%s/search/movie?query=%s&language=en-US&page=1&include_adult=true",
		c.config.TMDBBaseURL, url.QueryEscape(query))

	var result struct {
		Results []CatalogSearchResult `json:"results"`
	}
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}

	c.searchCache.Set(query, result.Results)
	return result.Results, nil
}

// FetchByID 按目录 ID 取电影详情
// singleflight 合并并发的同片请求，详情短暂缓存
func (c *CatalogClient) FetchByID(ctx context.Context, id int) (*CatalogDetail, error) {
	cacheKey := "catalog:detail:" + strconv.Itoa(id)
	if cached, ok := utils.CacheGet(cacheKey); ok {
		return cached.(*CatalogDetail), nil
	}

	val, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		return c.fetchByIDInternal(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	detail := val.(*CatalogDetail)
	utils.CacheSet(cacheKey, detail, 10*time.Minute)
	return detail, nil
}

func (c *CatalogClient) fetchByIDInternal(ctx context.Context, id int) (*CatalogDetail, error) {
	reqURL := fmt.Sprintf("%s/movie/%d", c.config.TMDBBaseURL, id)

	var result struct {
		OriginalTitle string `json:"original_title"`
		ReleaseDate   string `json:"release_date"`
		Overview      string `json:"overview"`
		BackdropPath  string `json:"backdrop_path"`
	}
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}

	detail := &CatalogDetail{
		Title:       result.OriginalTitle,
		ReleaseDate: result.ReleaseDate,
		Overview:    result.Overview,
	}
	if result.BackdropPath != "" {
		detail.PosterPath = posterBaseURL + result.BackdropPath
	}
	return detail, nil
}

func (c *CatalogClient) getJSON(ctx context.Context, reqURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.TMDBToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.TMDBToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: 状态码 %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: 解析响应失败: %v", ErrCatalogUnavailable, err)
	}
	return nil
}
