package myErrors

import "errors"

// 领域错误哨兵。服务层返回这些错误（可被 fmt.Errorf %w 包装），
// 控制器用 errors.Is 判定并映射为各自的 HTTP 状态码。
// 仓库层的"记录不存在"统一用 commonerrors.ErrRepoNotFound，
// 由服务层翻译成下面更具体的哨兵。
var (
	// ErrNotFound 目标资源不存在
	ErrNotFound = errors.New("resource not found")

	// ErrValidation 字段级校验失败（slug 格式、内容长度等）
	ErrValidation = errors.New("validation failed")

	// --- 分类 ---

	// ErrDuplicateSlug slug 已被占用
	ErrDuplicateSlug = errors.New("category: slug already exists")
	// ErrParentNotFound 指定的父分类不存在
	ErrParentNotFound = errors.New("category: parent not found")
	// ErrCyclicParent 试图把分类挂到自身或自身的后代之下
	ErrCyclicParent = errors.New("category: cannot set itself or its descendants as parent")
	// ErrHasChildren 仍有子分类引用，禁止删除
	ErrHasChildren = errors.New("category: has child categories")

	// --- 评论 ---

	// ErrPostNotFound 评论的目标帖子不存在
	ErrPostNotFound = errors.New("comment: post not found")
	// ErrCommentsDisabled 帖子关闭了评论
	ErrCommentsDisabled = errors.New("comment: comments are not allowed for this post")
	// ErrParentCommentNotFound 回复的父评论不存在
	ErrParentCommentNotFound = errors.New("comment: parent comment not found")
	// ErrParentPostMismatch 父评论属于另一个帖子
	ErrParentPostMismatch = errors.New("comment: parent comment belongs to different post")
	// ErrAlreadyLiked 已点赞，重复点赞被拒绝
	ErrAlreadyLiked = errors.New("comment: already liked")
	// ErrNotLiked 未点赞，取消点赞无从谈起
	ErrNotLiked = errors.New("comment: not liked")

	// --- 认证与授权 ---

	// ErrUnauthenticated 缺少或无法验证身份凭证
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrForbidden 身份有效但无权执行该操作
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = errors.New("auth: incorrect email or password")
	// ErrInactiveUser 账号已被停用
	ErrInactiveUser = errors.New("auth: inactive user")
	// ErrEmailTaken 邮箱已被注册
	ErrEmailTaken = errors.New("auth: email already registered")
	// ErrUsernameTaken 用户名已被占用
	ErrUsernameTaken = errors.New("auth: username already taken")
)
