package mysql

import (
	"context"
	"fmt"
	"testing"

	sharedConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Category{},
		&entities.Post{},
		&entities.Comment{},
		&entities.CommentLike{},
	))
	return db
}

func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(sharedConfig.ZapConfig{})
	require.NoError(t, err)
	return logger
}

func TestBatchUpdatePostViewCounts(t *testing.T) {
	db := newTestDB(t)
	logger := newTestLogger(t)
	// SQLite 内存库用单 worker，避免写锁竞争；小批大小覆盖多批次路径
	repo := NewPostBatchOperationsRepository(db, logger, config.ViewSyncConfig{
		BatchSize:        2,
		ConcurrencyLevel: 1,
	})
	ctx := context.Background()

	posts := make([]*entities.Post, 0, 5)
	for i := 0; i < 5; i++ {
		p := &entities.Post{
			Title:    fmt.Sprintf("post %d", i),
			Content:  "content",
			AuthorID: 1,
			Status:   enums.PostStatusPublished,
		}
		require.NoError(t, db.Create(p).Error)
		posts = append(posts, p)
	}

	viewCounts := map[uint64]int64{
		posts[0].ID: 10,
		posts[1].ID: 20,
		posts[2].ID: 30,
		posts[3].ID: 40,
	}
	require.NoError(t, repo.BatchUpdatePostViewCounts(ctx, viewCounts))

	for id, want := range viewCounts {
		var p entities.Post
		require.NoError(t, db.First(&p, id).Error)
		assert.Equal(t, want, p.ViewCount, "post %d", id)
	}

	// 未在映射中的帖子不受影响
	var untouched entities.Post
	require.NoError(t, db.First(&untouched, posts[4].ID).Error)
	assert.EqualValues(t, 0, untouched.ViewCount)

	// 空映射是合法的空操作
	require.NoError(t, repo.BatchUpdatePostViewCounts(ctx, nil))
}
