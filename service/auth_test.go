package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/myErrors"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthSvc(t, db)
	ctx := context.Background()

	userVO, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:    "alice@test.local",
		Username: "alice",
		Password: "supersecret1",
		FullName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RoleUser, userVO.Role)
	assert.True(t, userVO.IsActive)
	assert.NotZero(t, userVO.ID)

	// 明文密码不落库
	var stored entities.User
	require.NoError(t, db.First(&stored, userVO.ID).Error)
	assert.NotEqual(t, "supersecret1", stored.HashedPassword)

	tokenVO, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@test.local", Password: "supersecret1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tokenVO.TokenType)
	assert.NotEmpty(t, tokenVO.AccessToken)

	userID, err := svc.ParseToken(tokenVO.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userVO.ID, userID)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthSvc(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "bob@test.local", Username: "bob", Password: "supersecret1",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Email: "bob@test.local", Username: "bob2", Password: "supersecret1",
	})
	assert.ErrorIs(t, err, myErrors.ErrEmailTaken)

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Email: "bob2@test.local", Username: "bob", Password: "supersecret1",
	})
	assert.ErrorIs(t, err, myErrors.ErrUsernameTaken)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthSvc(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "carol@test.local", Username: "carol", Password: "supersecret1",
	})
	require.NoError(t, err)

	// 密码错误与邮箱不存在返回同一个错误，不泄露账号存在性
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "carol@test.local", Password: "wrong-password"})
	assert.ErrorIs(t, err, myErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@test.local", Password: "supersecret1"})
	assert.ErrorIs(t, err, myErrors.ErrInvalidCredentials)
}

func TestAuthService_LoginInactiveUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthSvc(t, db)
	ctx := context.Background()

	userVO, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "dave@test.local", Username: "dave", Password: "supersecret1",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&entities.User{}).Where("id = ?", userVO.ID).Update("is_active", false).Error)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "dave@test.local", Password: "supersecret1"})
	assert.ErrorIs(t, err, myErrors.ErrInactiveUser)
}

func TestAuthService_ChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthSvc(t, db)
	ctx := context.Background()

	userVO, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "erin@test.local", Username: "erin", Password: "oldpassword1",
	})
	require.NoError(t, err)

	var actor entities.User
	require.NoError(t, db.First(&actor, userVO.ID).Error)

	// 旧密码校验不过
	err = svc.ChangePassword(ctx, &actor, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong-password", NewPassword: "newpassword1",
	})
	assert.ErrorIs(t, err, myErrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, &actor, &dto.ChangePasswordRequest{
		CurrentPassword: "oldpassword1", NewPassword: "newpassword1",
	}))

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "erin@test.local", Password: "oldpassword1"})
	assert.ErrorIs(t, err, myErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "erin@test.local", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestAuthService_ParseTokenRejectsGarbage(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthSvc(t, db)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, myErrors.ErrUnauthenticated)

	_, err = svc.ParseToken("")
	assert.ErrorIs(t, err, myErrors.ErrUnauthenticated)
}
