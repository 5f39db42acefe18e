package dto

import "nesttask/backend/pkg/classtime"

// ── 课程批量导入 DTO ──

// CourseCandidate 待导入的课程记录（未校验）
type CourseCandidate struct {
	Name          string            `json:"name"           validate:"required,max=200"`
	Code          string            `json:"code"           validate:"required,max=50"`
	Teacher       string            `json:"teacher"        validate:"omitempty,max=100"`
	TeacherID     string            `json:"teacher_id"     validate:"omitempty,uuid"`
	ClassTimes    []classtime.Entry `json:"class_times"`
	TelegramGroup string            `json:"telegram_group" validate:"omitempty,max=500"`
	BLCLink       string            `json:"blc_link"       validate:"omitempty,max=500"`
	BLCEnrollKey  string            `json:"blc_enroll_key" validate:"omitempty,max=100"`
	Credit        float64           `json:"credit"         validate:"gte=0"`
	Section       string            `json:"section"        validate:"omitempty,max=50"`

	// 以下字段由 Excel 解析填充
	SourceRow  int   `json:"-" validate:"-"` // 工作表行号（表头为第 1 行），0 表示非文件来源
	ParseError error `json:"-" validate:"-"` // 单元格解析失败，导入时作为该行的 error
}

// ImportCoursesRequest JSON 批量导入请求
type ImportCoursesRequest struct {
	Courses []CourseCandidate `json:"courses" binding:"required"`
}

// 导入结果类别
const (
	OutcomeAbort   = "abort"
	OutcomeError   = "error"
	OutcomeWarning = "warning"
)

// ImportOutcome 单行导入结果；成功且无附加信息的行不产生 outcome
// Row 为 Excel 工作表行号，JSON 导入时为从 1 开始的位置；批次级 abort 时为 0
type ImportOutcome struct {
	Row     int    `json:"row"`
	Code    string `json:"code,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// CourseImportReport 批量导入报告
type CourseImportReport struct {
	Total   int             `json:"total"`
	Success int             `json:"success"`
	Errors  []ImportOutcome `json:"errors"`
}

// Aborted 整批是否被拒绝
func (r *CourseImportReport) Aborted() bool {
	return len(r.Errors) == 1 && r.Errors[0].Kind == OutcomeAbort
}
