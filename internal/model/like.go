package model

import (
	"time"
)

// Like 用户点赞边：UserID 点赞 LikedUserID
// 同一有序对最多存在一条记录，由复合唯一索引保证
type Like struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id" gorm:"not null;uniqueIndex:idx_likes_pair"`
	LikedUserID int       `json:"liked_user_id" db:"liked_user_id" gorm:"not null;uniqueIndex:idx_likes_pair"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
