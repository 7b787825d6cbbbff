package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sharedConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/service"
)

func newAuthFixture(t *testing.T) (*gorm.DB, service.AuthService, mysql.UserRepository, *core.ZapLogger) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	logger, err := core.NewZapLogger(sharedConfig.ZapConfig{})
	require.NoError(t, err)
	userRepo := mysql.NewUserRepository(db, logger)
	jwtCfg := config.JWTConfig{SecretKey: "test-secret-key", Issuer: "blog_service_test", ExpireMinutes: 5}
	return db, service.NewAuthService(userRepo, jwtCfg, logger), userRepo, logger
}

func registerAndLogin(t *testing.T, authSvc service.AuthService) string {
	t.Helper()
	ctx := context.Background()
	email := fmt.Sprintf("mw_%s@example.com", uuid.NewString()[:8])
	_, err := authSvc.Register(ctx, &dto.RegisterRequest{
		Email:    email,
		Username: "mw_" + uuid.NewString()[:8],
		Password: "password123",
	})
	require.NoError(t, err)
	token, err := authSvc.Login(ctx, &dto.LoginRequest{Email: email, Password: "password123"})
	require.NoError(t, err)
	return token.AccessToken
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, authSvc, userRepo, logger := newAuthFixture(t)
	token := registerAndLogin(t, authSvc)

	router := gin.New()
	router.GET("/protected", RequireAuth(authSvc, userRepo, logger), func(c *gin.Context) {
		actor := ActorFromContext(c)
		require.NotNil(t, actor)
		c.String(http.StatusOK, "ok")
	})

	do := func(authHeader string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("Bearer "+token))
	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer not-a-token"))

	// 令牌有效但用户已被删除时同样拒绝
	require.NoError(t, db.Where("1 = 1").Delete(&entities.User{}).Error)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+token))
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, authSvc, userRepo, _ := newAuthFixture(t)
	token := registerAndLogin(t, authSvc)

	router := gin.New()
	router.GET("/open", OptionalAuth(authSvc, userRepo), func(c *gin.Context) {
		if ActorFromContext(c) != nil {
			c.String(http.StatusOK, "user")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	do := func(authHeader string) string {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		router.ServeHTTP(w, req)
		return w.Body.String()
	}

	assert.Equal(t, "user", do("Bearer "+token))
	assert.Equal(t, "anonymous", do(""))
	assert.Equal(t, "anonymous", do("Bearer garbage"))

	// 账号被停用后即使令牌有效也按匿名处理
	require.NoError(t, db.Model(&entities.User{}).Where("1 = 1").Update("is_active", false).Error)
	assert.Equal(t, "anonymous", do("Bearer "+token))
}
