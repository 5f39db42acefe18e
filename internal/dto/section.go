package dto

// ── 分区模块 DTO ──

// CreateSectionRequest 创建分区请求
type CreateSectionRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"omitempty,max=200"`
}

// UpdateSectionRequest 更新分区请求
type UpdateSectionRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=50"`
	Description *string `json:"description" binding:"omitempty,max=200"`
	IsActive    *bool   `json:"is_active"`
}

// SectionListRequest 分区列表查询参数
type SectionListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// SectionDetailResponse 分区详细信息响应
type SectionDetailResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	MemberCount int64  `json:"member_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
