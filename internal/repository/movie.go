package repository

import (
	"errors"
	"time"

	"github.com/user/movierank/internal/model"
	"gorm.io/gorm"
)

// CollectionLimit 每个用户榜单的条目上限
const CollectionLimit = 10

// movieLockClass pg_advisory_xact_lock 的命名空间，和 ownerID 一起构成锁键
const movieLockClass = 1

var (
	// ErrCollectionFull 榜单已满
	ErrCollectionFull = errors.New("collection already holds the maximum number of movies")
	// ErrMovieNotFound 条目不存在或不属于当前用户，两种情况不作区分
	ErrMovieNotFound = errors.New("movie not found")
)

type MovieRepository struct {
	db *gorm.DB
}

// lockOwner 串行化同一属主的并发加片
// READ COMMITTED 下条件插入里的计数子查询各看各的快照，两个事务可以同时
// 读到 9 然后都插入；事务级咨询锁让第二个事务等到第一个提交后再查容量
func lockOwner(tx *gorm.DB, ownerID int) error {
	// sqlite 单写入者，语句天然串行
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", movieLockClass, ownerID).Error
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// CreateRanked 插入条目并在同一事务内重排名次
// 先拿属主锁把并发加片串行化，条件插入只是兜底复查
func (r *MovieRepository) CreateRanked(m *model.Movie) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockOwner(tx, m.OwnerID); err != nil {
			return err
		}

		res := tx.Raw(`
			INSERT INTO movies (title, year, description, rating, ranking, review, poster, owner_id, created_at, updated_at)
			SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
			WHERE (SELECT COUNT(*) FROM movies WHERE owner_id = ?) < ?
			RETURNING id`,
			m.Title, m.Year, m.Description, m.Rating, m.Ranking, m.Review, m.Poster, m.OwnerID, m.CreatedAt, m.UpdatedAt,
			m.OwnerID, CollectionLimit,
		).Scan(&m.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCollectionFull
		}

		if _, err := r.rerank(tx, m.OwnerID); err != nil {
			return err
		}
		// 取回重排后的名次
		return tx.First(m, m.ID).Error
	})
}

// UpdateRated 更新评分和评论，按属主过滤，别人的条目视同不存在
func (r *MovieRepository) UpdateRated(ownerID, movieID int, rating float64, review string) (*model.Movie, error) {
	var m model.Movie
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", movieID, ownerID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMovieNotFound
			}
			return err
		}

		if err := tx.Model(&m).Updates(map[string]interface{}{
			"rating":     rating,
			"review":     review,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return err
		}

		if _, err := r.rerank(tx, ownerID); err != nil {
			return err
		}
		return tx.First(&m, m.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteRanked 删除条目并在同一事务内重排名次
func (r *MovieRepository) DeleteRanked(ownerID, movieID int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", movieID, ownerID).Delete(&model.Movie{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMovieNotFound
		}

		_, err := r.rerank(tx, ownerID)
		return err
	})
}

// ListRanked 重算名次并按名次返回榜单，重复调用结果不变
func (r *MovieRepository) ListRanked(ownerID int) ([]*model.Movie, error) {
	var movies []*model.Movie
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		movies, err = r.rerank(tx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// Get 按属主取单个条目
func (r *MovieRepository) Get(ownerID, movieID int) (*model.Movie, error) {
	var m model.Movie
	err := r.db.Where("id = ? AND owner_id = ?", movieID, ownerID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountByOwner 统计榜单条目数
func (r *MovieRepository) CountByOwner(ownerID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.Movie{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// rerank 按评分降序重排名次，评分相同沿用旧名次（稳定）
// 只回写发生变化的行
func (r *MovieRepository) rerank(tx *gorm.DB, ownerID int) ([]*model.Movie, error) {
	var movies []*model.Movie
	if err := tx.Where("owner_id = ?", ownerID).
		Order("rating DESC, ranking ASC, id ASC").
		Find(&movies).Error; err != nil {
		return nil, err
	}

	for i, m := range movies {
		rank := i + 1
		if m.Ranking == rank {
			continue
		}
		if err := tx.Model(&model.Movie{}).Where("id = ?", m.ID).
			UpdateColumn("ranking", rank).Error; err != nil {
			return nil, err
		}
		m.Ranking = rank
	}

	return movies, nil
}
