package model

// Section 分区表，对应 sections
// section_admin 的可见范围与权限以分区为单位
type Section struct {
	ID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	TrackedModel
}

// TableName 指定表名
func (Section) TableName() string { return "sections" }
