package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/user/movierank/internal/model"
	"gorm.io/gorm"
)

func TestToggleRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)

	liked, err := repo.Toggle(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !liked {
		t.Fatal("第一次切换应为点赞")
	}

	liked, err = repo.Toggle(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if liked {
		t.Fatal("第二次切换应为取消点赞")
	}

	// 来回切换后边不存在
	var count int64
	db.Model(&model.Like{}).Where("user_id = ? AND liked_user_id = ?", 1, 2).Count(&count)
	if count != 0 {
		t.Fatalf("边应已删除，实际存在 %d 条", count)
	}
}

func TestToggleDirected(t *testing.T) {
	repo := NewLikeRepository(newTestDB(t))

	// A 赞 B 和 B 赞 A 是两条独立的边
	if _, err := repo.Toggle(1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Toggle(2, 1); err != nil {
		t.Fatal(err)
	}

	c1, _ := repo.Count(1)
	c2, _ := repo.Count(2)
	if c1 != 1 || c2 != 1 {
		t.Fatalf("双向各一条边，计数应为 1/1，实际 %d/%d", c1, c2)
	}
}

func TestCountMatchesToggles(t *testing.T) {
	repo := NewLikeRepository(newTestDB(t))

	// 三个人点赞，其中一个又取消
	repo.Toggle(1, 9)
	repo.Toggle(2, 9)
	repo.Toggle(3, 9)
	repo.Toggle(2, 9)

	count, err := repo.Count(9)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("期望 2 个赞，实际 %d", count)
	}
}

func TestCountForUsers(t *testing.T) {
	repo := NewLikeRepository(newTestDB(t))

	repo.Toggle(1, 5)
	repo.Toggle(2, 5)
	repo.Toggle(1, 6)

	counts, err := repo.CountForUsers([]int{5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}
	if counts[5] != 2 || counts[6] != 1 || counts[7] != 0 {
		t.Fatalf("计数不对: %v", counts)
	}
}

func TestLikedTargets(t *testing.T) {
	repo := NewLikeRepository(newTestDB(t))

	repo.Toggle(1, 2)
	repo.Toggle(1, 3)

	targets, err := repo.LikedTargets(1)
	if err != nil {
		t.Fatal(err)
	}
	if !targets[2] || !targets[3] || targets[4] {
		t.Fatalf("点赞集合不对: %v", targets)
	}

	ok, err := repo.Liked(1, 2)
	if err != nil || !ok {
		t.Fatalf("Liked(1,2) 应为 true: %v %v", ok, err)
	}
}

func TestLikePairUnique(t *testing.T) {
	db := newTestDB(t)

	edge := &model.Like{UserID: 1, LikedUserID: 2, CreatedAt: time.Now()}
	if err := db.Create(edge).Error; err != nil {
		t.Fatal(err)
	}

	dup := &model.Like{UserID: 1, LikedUserID: 2, CreatedAt: time.Now()}
	err := db.Create(dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("重复边应触发唯一键冲突，实际: %v", err)
	}
}
