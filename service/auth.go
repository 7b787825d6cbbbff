package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
)

// AccessClaims 访问令牌的自定义 claims。
// 角色冗余写入令牌，但鉴权时以数据库中的当前角色为准（中间件重新加载用户）。
type AccessClaims struct {
	UserID uint64         `json:"uid"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthService 定义了注册、登录与令牌相关的业务逻辑接口。
type AuthService interface {
	// Register 注册新用户。
	// - 邮箱已被注册返回 myErrors.ErrEmailTaken，用户名被占用返回 myErrors.ErrUsernameTaken。
	// - 新用户角色固定为普通用户，密码以 bcrypt 哈希存储。
	Register(ctx context.Context, req *dto.RegisterRequest) (*vo.UserVO, error)

	// Login 校验邮箱与密码，签发访问令牌。
	// - 凭证错误统一返回 myErrors.ErrInvalidCredentials，不区分"邮箱不存在"与"密码错误"。
	// - 账号被停用返回 myErrors.ErrInactiveUser。
	Login(ctx context.Context, req *dto.LoginRequest) (*vo.TokenVO, error)

	// ChangePassword 修改当前用户密码，需要先验证旧密码。
	ChangePassword(ctx context.Context, actor *entities.User, req *dto.ChangePasswordRequest) error

	// ParseToken 解析并校验访问令牌，返回其中的用户 ID。
	// - 任何解析或校验失败都归一为 myErrors.ErrUnauthenticated。
	ParseToken(tokenString string) (uint64, error)
}

// authService 是 AuthService 接口的具体实现。
type authService struct {
	userRepo mysql.UserRepository
	jwtCfg   config.JWTConfig
	logger   *core.ZapLogger
}

// NewAuthService 是 authService 的构造函数。
func NewAuthService(userRepo mysql.UserRepository, jwtCfg config.JWTConfig, logger *core.ZapLogger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		logger:   logger,
	}
}

// Register 实现用户注册流程。
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*vo.UserVO, error) {
	// 唯一性预检，并发下的竞态由数据库唯一索引兜底
	if _, err := s.userRepo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, myErrors.ErrEmailTaken
	} else if !errors.Is(err, commonerrors.ErrRepoNotFound) {
		return nil, fmt.Errorf("注册前校验邮箱失败: %w", err)
	}

	if _, err := s.userRepo.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, myErrors.ErrUsernameTaken
	} else if !errors.Is(err, commonerrors.ErrRepoNotFound) {
		return nil, fmt.Errorf("注册前校验用户名失败: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &entities.User{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: string(hashed),
		Role:           enums.RoleUser,
		FullName:       req.FullName,
		IsActive:       true,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	s.logger.Info("用户注册成功", zap.Uint64("userID", user.ID), zap.String("username", user.Username))
	return vo.MapUserToVO(user), nil
}

// Login 实现登录与令牌签发流程。
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*vo.TokenVO, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("登录查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, myErrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, myErrors.ErrInactiveUser
	}

	expireMinutes := s.jwtCfg.ExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 60
	}
	expiresAt := time.Now().Add(time.Duration(expireMinutes) * time.Minute)

	claims := AccessClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		s.logger.Error("签发访问令牌失败", zap.Error(err), zap.Uint64("userID", user.ID))
		return nil, fmt.Errorf("签发访问令牌失败: %w", err)
	}

	s.logger.Info("用户登录成功", zap.Uint64("userID", user.ID))
	return &vo.TokenVO{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// ChangePassword 实现密码修改流程。
func (s *authService) ChangePassword(ctx context.Context, actor *entities.User, req *dto.ChangePasswordRequest) error {
	if actor == nil {
		return myErrors.ErrUnauthenticated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		return myErrors.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码哈希失败: %w", err)
	}

	actor.HashedPassword = string(hashed)
	if err := s.userRepo.UpdateUser(ctx, actor); err != nil {
		return fmt.Errorf("保存新密码失败: %w", err)
	}

	s.logger.Info("用户密码已修改", zap.Uint64("userID", actor.ID))
	return nil
}

// ParseToken 实现访问令牌的解析与校验。
func (s *authService) ParseToken(tokenString string) (uint64, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.SecretKey), nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return 0, myErrors.ErrUnauthenticated
	}
	return claims.UserID, nil
}
