package service

import (
	"errors"

	"github.com/user/movierank/internal/repository"
)

// ErrSelfLike 不允许给自己点赞
var ErrSelfLike = errors.New("cannot like yourself")

// SocialService 维护用户之间的点赞关系
type SocialService struct {
	likes *repository.LikeRepository
}

func NewSocialService(likes *repository.LikeRepository) *SocialService {
	return &SocialService{likes: likes}
}

// Toggle 切换点赞状态，返回切换后是否为已点赞
func (s *SocialService) Toggle(actorID, targetID int) (bool, error) {
	if actorID == targetID {
		return false, ErrSelfLike
	}
	return s.likes.Toggle(actorID, targetID)
}

// LikeCount 该用户收到的点赞数
func (s *SocialService) LikeCount(userID int) (int64, error) {
	return s.likes.Count(userID)
}

// CountForUsers 批量取点赞数
func (s *SocialService) CountForUsers(userIDs []int) (map[int]int64, error) {
	return s.likes.CountForUsers(userIDs)
}

// Liked 检查 actor 是否点赞了 target
func (s *SocialService) Liked(actorID, targetID int) (bool, error) {
	return s.likes.Liked(actorID, targetID)
}

// LikedTargets actor 点赞过的用户集合
func (s *SocialService) LikedTargets(actorID int) (map[int]bool, error) {
	return s.likes.LikedTargets(actorID)
}
