package entities

// Category 分类实体，自引用形成分类森林
// - 表名: categories
// - ParentID 为 nil 表示根分类；父子关系必须无环（服务层在变更前校验）。
// - 有子分类引用时禁止删除（服务层校验 HasChildren）。
type Category struct {
	BaseModel

	// 分类名
	Name string `gorm:"type:varchar(100);not null"`

	// URL 安全的唯一标识，小写字母数字加连字符，全表唯一
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex"`

	// 描述，可选
	Description string `gorm:"type:varchar(500)"`

	// 父分类 ID，可为 NULL，自引用 categories.id
	// - 加索引以支撑按父节点取子分类的遍历原语
	ParentID *uint64 `gorm:"index"`

	// 同级排序键，列表按 order 升序、创建时间升序返回
	Order int `gorm:"column:sort_order;not null;default:0"`
}
