package service

import (
	"fmt"
	"testing"

	sharedConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/repo/mysql"
)

// newTestDB 建立一个内存 SQLite 数据库并迁移全部实体。
// 每个测试使用独立的命名内存库，互不干扰。
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

// testJWTConfig 测试用的 JWT 配置。
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:     "test-secret-key",
		Issuer:        "blog_service_test",
		ExpireMinutes: 5,
	}
}

func newAuthSvc(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	logger := newTestLogger(t)
	return NewAuthService(mysql.NewUserRepository(db, logger), testJWTConfig(), logger)
}

func newCategorySvc(t *testing.T, db *gorm.DB) CategoryService {
	t.Helper()
	logger := newTestLogger(t)
	return NewCategoryService(db,
		mysql.NewCategoryRepository(db, logger),
		mysql.NewCategoryStatsRepository(db, logger),
		logger,
	)
}

// newPostSvc 的 Redis / COS / Kafka 依赖在测试中都留空，
// 服务层对这些可选依赖做了 nil 守卫。
func newPostSvc(t *testing.T, db *gorm.DB) PostService {
	t.Helper()
	logger := newTestLogger(t)
	return NewPostService(db,
		mysql.NewPostRepository(db, logger),
		mysql.NewCategoryRepository(db, logger),
		mysql.NewCommentRepository(db, logger),
		mysql.NewCommentLikeRepository(db, logger),
		mysql.NewCategoryStatsRepository(db, logger),
		nil, nil, nil,
		logger,
	)
}

func newCommentSvc(t *testing.T, db *gorm.DB) CommentService {
	t.Helper()
	logger := newTestLogger(t)
	return NewCommentService(db,
		mysql.NewCommentRepository(db, logger),
		mysql.NewCommentLikeRepository(db, logger),
		mysql.NewPostRepository(db, logger),
		logger,
	)
}

// seedUser 直接插入一个用户，绕过注册流程。
func seedUser(t *testing.T, db *gorm.DB, role enums.UserRole) *entities.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &entities.User{
		Email:          fmt.Sprintf("%s@test.local", suffix),
		Username:       "user_" + suffix,
		HashedPassword: string(hashed),
		Role:           role,
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedPost 直接插入一条帖子。
func seedPost(t *testing.T, db *gorm.DB, authorID uint64, status enums.PostStatus) *entities.Post {
	t.Helper()
	post := &entities.Post{
		Title:         "title " + uuid.NewString()[:8],
		Content:       "content",
		AuthorID:      authorID,
		Status:        status,
		AllowComments: true,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// seedComment 直接插入一条评论。parentID 为 nil 时是根评论。
func seedComment(t *testing.T, db *gorm.DB, authorID, postID uint64, parentID *uint64) *entities.Comment {
	t.Helper()
	comment := &entities.Comment{
		Content:  "comment " + uuid.NewString()[:8],
		AuthorID: authorID,
		PostID:   postID,
		ParentID: parentID,
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}
