package entities

import "time"

// BaseModel 所有实体共用的基础字段。
// - ID 由数据库自增分配，CreatedAt/UpdatedAt 由 GORM 自动维护。
// - 注意: 本服务的删除语义是硬删除（被引用约束阻止的除外），
//   因此这里不嵌入 gorm.DeletedAt，避免 GORM 的软删除行为。
type BaseModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
