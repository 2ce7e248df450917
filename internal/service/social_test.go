package service

import (
	"errors"
	"testing"
)

func TestToggleSelfLikeForbidden(t *testing.T) {
	svc := NewSocialService(newTestRepos(t).Like)

	_, err := svc.Toggle(1, 1)
	if !errors.Is(err, ErrSelfLike) {
		t.Fatalf("给自己点赞应返回 ErrSelfLike，实际: %v", err)
	}

	count, _ := svc.LikeCount(1)
	if count != 0 {
		t.Fatalf("被拒绝的点赞不应计数: %d", count)
	}
}

func TestToggleAndCount(t *testing.T) {
	svc := NewSocialService(newTestRepos(t).Like)

	liked, err := svc.Toggle(1, 2)
	if err != nil || !liked {
		t.Fatalf("期望 Liked: %v %v", liked, err)
	}

	liked, err = svc.Toggle(1, 2)
	if err != nil || liked {
		t.Fatalf("期望 Unliked: %v %v", liked, err)
	}

	count, _ := svc.LikeCount(2)
	if count != 0 {
		t.Fatalf("来回切换后计数应为 0: %d", count)
	}
}
