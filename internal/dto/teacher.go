package dto

// ── 教师模块 DTO ──

// CreateTeacherRequest 创建教师请求
type CreateTeacherRequest struct {
	Name       string `json:"name"       binding:"required,max=100"`
	Phone      string `json:"phone"      binding:"required,max=30"`
	Email      string `json:"email"      binding:"omitempty,email"`
	Department string `json:"department" binding:"omitempty,max=50"`
}

// UpdateTeacherRequest 更新教师请求
type UpdateTeacherRequest struct {
	Name       *string `json:"name"       binding:"omitempty,max=100"`
	Phone      *string `json:"phone"      binding:"omitempty,max=30"`
	Email      *string `json:"email"      binding:"omitempty,email"`
	Department *string `json:"department" binding:"omitempty,max=50"`
}

// TeacherListRequest 教师列表查询参数
type TeacherListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// TeacherResponse 教师响应
type TeacherResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	CreatedAt  string `json:"created_at"`
}
