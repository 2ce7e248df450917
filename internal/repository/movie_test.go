package repository

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/user/movierank/internal/model"
)

func addMovie(t *testing.T, repo *MovieRepository, ownerID int, title string, rating float64) *model.Movie {
	t.Helper()

	m := &model.Movie{
		Title:       title,
		Year:        2000,
		Description: "No overview available",
		Rating:      rating,
		Ranking:     CollectionLimit,
		Poster:      "/static/img/poster-fallback.svg",
		OwnerID:     ownerID,
	}
	if err := repo.CreateRanked(m); err != nil {
		t.Fatalf("加片失败 (%s): %v", title, err)
	}
	return m
}

func TestCreateRankedCapacity(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	for i := 0; i < CollectionLimit; i++ {
		addMovie(t, repo, 7, "电影", float64(i))
	}

	m := &model.Movie{Title: "第十一部", OwnerID: 7, Ranking: CollectionLimit}
	err := repo.CreateRanked(m)
	if !errors.Is(err, ErrCollectionFull) {
		t.Fatalf("第 11 部应返回 ErrCollectionFull，实际: %v", err)
	}

	count, err := repo.CountByOwner(7)
	if err != nil {
		t.Fatal(err)
	}
	if count != CollectionLimit {
		t.Fatalf("失败的插入不应改变榜单大小，当前 %d", count)
	}

	// 别的用户不受影响
	addMovie(t, repo, 8, "别人的电影", 5)
}

func TestListRankedOrdering(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	addMovie(t, repo, 3, "第三名", 7.5)
	addMovie(t, repo, 3, "第一名", 9.0)
	addMovie(t, repo, 3, "第二名", 8.0)

	movies, err := repo.ListRanked(3)
	if err != nil {
		t.Fatal(err)
	}

	wantTitles := []string{"第一名", "第二名", "第三名"}
	wantRatings := []float64{9.0, 8.0, 7.5}
	if len(movies) != 3 {
		t.Fatalf("期望 3 部，实际 %d", len(movies))
	}
	for i, m := range movies {
		if m.Title != wantTitles[i] || m.Rating != wantRatings[i] {
			t.Errorf("位置 %d: 期望 %s(%.1f)，实际 %s(%.1f)", i, wantTitles[i], wantRatings[i], m.Title, m.Rating)
		}
		if m.Ranking != i+1 {
			t.Errorf("位置 %d: 名次应为 %d，实际 %d", i, i+1, m.Ranking)
		}
	}

	// 重复调用结果不变
	again, err := repo.ListRanked(3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range again {
		if again[i].ID != movies[i].ID || again[i].Ranking != movies[i].Ranking {
			t.Fatalf("重排不幂等: 位置 %d", i)
		}
	}
}

func TestRerankStableOnTies(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	first := addMovie(t, repo, 5, "先来的", 8.0)
	second := addMovie(t, repo, 5, "后来的", 8.0)

	movies, err := repo.ListRanked(5)
	if err != nil {
		t.Fatal(err)
	}
	if movies[0].ID != first.ID || movies[1].ID != second.ID {
		t.Fatalf("同分时应保持原有顺序")
	}
}

func TestUpdateRatedReranks(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	low := addMovie(t, repo, 2, "逆袭", 3.0)
	addMovie(t, repo, 2, "原第一", 9.0)

	updated, err := repo.UpdateRated(2, low.ID, 9.5, "重看之后改观了")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Rating != 9.5 || updated.Review != "重看之后改观了" {
		t.Fatalf("评分评论未生效: %+v", updated)
	}
	if updated.Ranking != 1 {
		t.Fatalf("改分后应立即升到第 1，实际 %d", updated.Ranking)
	}
}

func TestUpdateRatedOwnershipScoped(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	m := addMovie(t, repo, 1, "我的电影", 6.0)

	_, err := repo.UpdateRated(2, m.ID, 1.0, "恶意修改")
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("改别人的条目应返回 ErrMovieNotFound，实际: %v", err)
	}

	// 原条目原样不动
	got, err := repo.Get(1, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rating != 6.0 || got.Review != "" {
		t.Fatalf("目标行不应被改动: %+v", got)
	}
}

func TestDeleteRankedOwnershipScoped(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	m := addMovie(t, repo, 1, "我的电影", 6.0)

	if err := repo.DeleteRanked(2, m.ID); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("删别人的条目应返回 ErrMovieNotFound，实际: %v", err)
	}
	if _, err := repo.Get(1, m.ID); err != nil {
		t.Fatalf("条目不应被删除: %v", err)
	}
}

func TestDeleteRankedClosesGap(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	addMovie(t, repo, 4, "留下 A", 9.0)
	mid := addMovie(t, repo, 4, "要删的", 8.0)
	addMovie(t, repo, 4, "留下 B", 7.0)

	if err := repo.DeleteRanked(4, mid.ID); err != nil {
		t.Fatal(err)
	}

	movies, err := repo.ListRanked(4)
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 2 {
		t.Fatalf("期望剩 2 部，实际 %d", len(movies))
	}
	for i, m := range movies {
		if m.Ranking != i+1 {
			t.Errorf("删除后名次应为稠密的 1..N，位置 %d 实际 %d", i, m.Ranking)
		}
	}
}

func TestCreateRankedConcurrentAdds(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	repo := NewMovieRepository(db)

	// 并发加片到只剩一个空位的榜单，成功数加已有数不能超过上限
	for i := 0; i < CollectionLimit-1; i++ {
		addMovie(t, repo, 9, "已有", float64(i))
	}

	var wg sync.WaitGroup
	var full int64
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := &model.Movie{Title: fmt.Sprintf("并发 %d", i), Year: 2000, OwnerID: 9, Ranking: CollectionLimit}
			switch err := repo.CreateRanked(m); {
			case errors.Is(err, ErrCollectionFull):
				atomic.AddInt64(&full, 1)
			case err != nil:
				t.Errorf("并发加片意外错误: %v", err)
			}
		}(i)
	}
	wg.Wait()

	count, err := repo.CountByOwner(9)
	if err != nil {
		t.Fatal(err)
	}
	if count != CollectionLimit {
		t.Fatalf("并发加片后应恰好 %d 部，实际 %d", CollectionLimit, count)
	}
	if full != 7 {
		t.Fatalf("抢不到空位的 7 次应返回 ErrCollectionFull，实际 %d", full)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	if _, err := repo.Get(1, 999); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("期望 ErrMovieNotFound，实际: %v", err)
	}
}
