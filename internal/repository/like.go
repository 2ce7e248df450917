package repository

import (
	"errors"
	"time"

	"github.com/user/movierank/internal/model"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle 切换点赞：有边则删，无边则建，返回切换后是否为已点赞
// 读写在同一事务内，复合唯一索引兜底并发重复插入
func (r *LikeRepository) Toggle(actorID, targetID int) (bool, error) {
	liked := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND liked_user_id = ?", actorID, targetID).
			Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		edge := &model.Like{
			UserID:      actorID,
			LikedUserID: targetID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(edge).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发切换抢先建边，最终状态同样是已点赞
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return liked, nil
}

// Count 统计有多少人点赞了该用户
func (r *LikeRepository) Count(userID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.Like{}).Where("liked_user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountForUsers 批量统计点赞数，未被点赞过的用户计为 0
func (r *LikeRepository) CountForUsers(userIDs []int) (map[int]int64, error) {
	counts := make(map[int]int64, len(userIDs))
	for _, id := range userIDs {
		counts[id] = 0
	}
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		LikedUserID int
		N           int64
	}
	err := r.db.Model(&model.Like{}).
		Select("liked_user_id, COUNT(*) AS n").
		Where("liked_user_id IN ?", userIDs).
		Group("liked_user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.LikedUserID] = row.N
	}
	return counts, nil
}

// Liked 检查 actor 是否点赞了 target
func (r *LikeRepository) Liked(actorID, targetID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.Like{}).
		Where("user_id = ? AND liked_user_id = ?", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}

// LikedTargets 返回 actor 点赞过的用户集合，探索页一次查完
func (r *LikeRepository) LikedTargets(actorID int) (map[int]bool, error) {
	var edges []model.Like
	if err := r.db.Where("user_id = ?", actorID).Find(&edges).Error; err != nil {
		return nil, err
	}

	targets := make(map[int]bool, len(edges))
	for _, e := range edges {
		targets[e.LikedUserID] = true
	}
	return targets, nil
}
