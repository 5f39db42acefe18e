package model

// Course 课程表，对应 courses
// class_time 为 classtime 编码后的文本；teacher 为冗余的教师显示名，teacher_id 解析成功后才有值
type Course struct {
	ID            string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string  `gorm:"type:varchar(200);not null"                     json:"name"`
	Code          string  `gorm:"type:varchar(50);not null;uniqueIndex"          json:"code"`
	Teacher       string  `gorm:"type:varchar(100)"                              json:"teacher"`
	ClassTime     string  `gorm:"type:text"                                      json:"class_time"`
	TelegramGroup string  `gorm:"type:text"                                      json:"telegram_group"`
	BLCLink       string  `gorm:"column:blc_link;type:text"                      json:"blc_link"`
	BLCEnrollKey  string  `gorm:"column:blc_enroll_key;type:varchar(100)"        json:"blc_enroll_key"`
	Credit        float64 `gorm:"type:numeric(4,1);not null;default:0"           json:"credit"`
	Section       *string `gorm:"type:varchar(50);index"                         json:"section,omitempty"`
	TeacherID     *string `gorm:"type:uuid"                                      json:"teacher_id,omitempty"`
	TrackedModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
