package mysql

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// UserRepository 定义了用户数据在 MySQL 中的持久化操作接口。
type UserRepository interface {
	// CreateUser 持久化一个新的用户记录。
	// - 对应用户注册操作，邮箱和用户名的唯一性由数据库唯一索引保证。
	CreateUser(ctx context.Context, user *entities.User) error

	// GetUserByID 根据主键检索用户。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetUserByID(ctx context.Context, id uint64) (*entities.User, error)

	// GetUserByEmail 根据邮箱检索用户，用于登录。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetUserByUsername 根据用户名检索用户，用于注册时的唯一性预检。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)

	// UpdateUser 保存用户实体的全部字段（如修改密码后的哈希）。
	UpdateUser(ctx context.Context, user *entities.User) error
}

// userRepository 是 UserRepository 接口针对 MySQL 的具体实现。
type userRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewUserRepository 是 userRepository 的构造函数。
func NewUserRepository(db *gorm.DB, logger *core.ZapLogger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser 实现用户的数据库插入操作。
func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.Error("创建用户数据库操作失败", zap.Error(err), zap.String("email", user.Email))
		return err
	}
	return nil
}

// GetUserByID 实现根据主键获取用户。
func (r *userRepository) GetUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 ID 获取用户数据库查询失败", zap.Uint64("userID", id), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 实现根据邮箱获取用户。
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据邮箱获取用户数据库查询失败", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 实现根据用户名获取用户。
func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据用户名获取用户数据库查询失败", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// UpdateUser 实现用户实体的整体保存。
func (r *userRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		r.logger.Error("更新用户数据库操作失败", zap.Error(err), zap.Uint64("userID", user.ID))
		return err
	}
	return nil
}
