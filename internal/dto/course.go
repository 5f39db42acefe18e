package dto

import "nesttask/backend/pkg/classtime"

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Name          string            `json:"name"           binding:"required,notblank,max=200"`
	Code          string            `json:"code"           binding:"required,notblank,max=50"`
	Teacher       string            `json:"teacher"        binding:"omitempty,max=100"`
	TeacherID     *string           `json:"teacher_id"     binding:"omitempty,uuid"`
	ClassTimes    []classtime.Entry `json:"class_times"    binding:"omitempty,dive"`
	TelegramGroup string            `json:"telegram_group" binding:"omitempty,max=500"`
	BLCLink       string            `json:"blc_link"       binding:"omitempty,max=500"`
	BLCEnrollKey  string            `json:"blc_enroll_key" binding:"omitempty,max=100"`
	Credit        float64           `json:"credit"         binding:"gte=0"`
	Section       string            `json:"section"        binding:"omitempty,max=50"`
}

// UpdateCourseRequest 更新课程请求，nil 字段保持不变
type UpdateCourseRequest struct {
	Name          *string            `json:"name"           binding:"omitempty,notblank,max=200"`
	Teacher       *string            `json:"teacher"        binding:"omitempty,max=100"`
	TeacherID     *string            `json:"teacher_id"     binding:"omitempty,uuid"`
	ClassTimes    *[]classtime.Entry `json:"class_times"`
	TelegramGroup *string            `json:"telegram_group" binding:"omitempty,max=500"`
	BLCLink       *string            `json:"blc_link"       binding:"omitempty,max=500"`
	BLCEnrollKey  *string            `json:"blc_enroll_key" binding:"omitempty,max=100"`
	Credit        *float64           `json:"credit"         binding:"omitempty,gte=0"`
	Section       *string            `json:"section"        binding:"omitempty,max=50"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	Section string `form:"section" binding:"omitempty,max=50"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Code          string            `json:"code"`
	Teacher       string            `json:"teacher"`
	TeacherID     *string           `json:"teacher_id,omitempty"`
	ClassTimes    []classtime.Entry `json:"class_times"`
	TelegramGroup string            `json:"telegram_group,omitempty"`
	BLCLink       string            `json:"blc_link,omitempty"`
	BLCEnrollKey  string            `json:"blc_enroll_key,omitempty"`
	Credit        float64           `json:"credit"`
	Section       string            `json:"section,omitempty"`
	MaterialCount int64             `json:"material_count"`
	CreatedAt     string            `json:"created_at"`
	CreatedBy     string            `json:"created_by,omitempty"`
}
