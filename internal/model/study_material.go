package model

import "github.com/lib/pq"

// StudyMaterial 学习资料表，对应 study_materials
// file_urls 与 original_file_names 为一一对应的平行数组
type StudyMaterial struct {
	ID                string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title             string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Description       string         `gorm:"type:text"                                      json:"description"`
	CourseID          string         `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Category          string         `gorm:"type:varchar(50);not null"                      json:"category"`
	FileURLs          pq.StringArray `gorm:"column:file_urls;type:text[]"                   json:"file_urls"`
	OriginalFileNames pq.StringArray `gorm:"column:original_file_names;type:text[]"         json:"original_file_names"`
	AuditModel
}

// TableName 指定表名
func (StudyMaterial) TableName() string { return "study_materials" }
