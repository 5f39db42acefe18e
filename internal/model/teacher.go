package model

// Teacher 教师表，对应 teachers
// phone 在表结构中为必填，批量导入自动创建时以占位值填充
type Teacher struct {
	ID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name       string `gorm:"type:varchar(100);not null;index"               json:"name"`
	Phone      string `gorm:"type:varchar(30);not null"                      json:"phone"`
	Email      string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Department string `gorm:"type:varchar(50)"                               json:"department"`
	AuditModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }
