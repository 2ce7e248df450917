package service

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/user/movierank/internal/config"
	"github.com/user/movierank/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return repository.NewRepositories(db)
}

func testConfig() *config.Config {
	return &config.Config{
		SiteName:      "MovieRank",
		DefaultPoster: "/static/img/poster-fallback.svg",
	}
}
