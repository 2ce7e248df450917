package service

import (
	"context"

	"github.com/user/movierank/internal/config"
	"github.com/user/movierank/internal/model"
	"github.com/user/movierank/internal/repository"
	"github.com/user/movierank/internal/utils"
)

// NoOverviewText 目录未提供简介时的兜底文案
const NoOverviewText = "No overview available"

// RatingInfo 加片时的初始评分，select 流程不带评分传 nil
type RatingInfo struct {
	Rating float64
	Review string
}

// CollectionService 维护每个用户的有界榜单：
// 加片时做容量检查和元数据兜底，所有变更后名次立即重排
type CollectionService struct {
	config  *config.Config
	movies  *repository.MovieRepository
	catalog *CatalogClient
}

func NewCollectionService(cfg *config.Config, movies *repository.MovieRepository, catalog *CatalogClient) *CollectionService {
	return &CollectionService{
		config:  cfg,
		movies:  movies,
		catalog: catalog,
	}
}

// AddMovie 把一条目录详情加进榜单
// 缺失的年份/简介/海报按规则兜底，榜单满时返回 repository.ErrCollectionFull
func (s *CollectionService) AddMovie(ownerID int, detail *CatalogDetail, info *RatingInfo) (*model.Movie, error) {
	m := &model.Movie{
		Title:       detail.Title,
		Year:        utils.ParseReleaseYear(detail.ReleaseDate),
		Description: detail.Overview,
		Poster:      detail.PosterPath,
		OwnerID:     ownerID,
		// 占位名次，插入事务内立即被重排覆盖
		Ranking: repository.CollectionLimit,
	}
	if m.Description == "" {
		m.Description = NoOverviewText
	}
	if m.Poster == "" {
		m.Poster = s.config.DefaultPoster
	}
	if info != nil {
		m.Rating = info.Rating
		m.Review = info.Review
	}

	if err := s.movies.CreateRanked(m); err != nil {
		return nil, err
	}
	return m, nil
}

// AddFromCatalog 拉取目录详情后加片，目录失败时不落库
func (s *CollectionService) AddFromCatalog(ctx context.Context, ownerID, catalogID int, info *RatingInfo) (*model.Movie, error) {
	detail, err := s.catalog.FetchByID(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	return s.AddMovie(ownerID, detail, info)
}

// UpdateMovie 更新评分和评论，别人的条目视同不存在
func (s *CollectionService) UpdateMovie(ownerID, movieID int, rating float64, review string) (*model.Movie, error) {
	return s.movies.UpdateRated(ownerID, movieID, rating, review)
}

// DeleteMovie 删除条目
func (s *CollectionService) DeleteMovie(ownerID, movieID int) error {
	return s.movies.DeleteRanked(ownerID, movieID)
}

// ListRanked 重算名次并按名次返回榜单
func (s *CollectionService) ListRanked(ownerID int) ([]*model.Movie, error) {
	return s.movies.ListRanked(ownerID)
}

// Get 按属主取单个条目，用于编辑页回显
func (s *CollectionService) Get(ownerID, movieID int) (*model.Movie, error) {
	return s.movies.Get(ownerID, movieID)
}

// Count 当前榜单条目数
func (s *CollectionService) Count(ownerID int) (int64, error) {
	return s.movies.CountByOwner(ownerID)
}
