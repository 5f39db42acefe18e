package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	SectionID string `form:"section_id" binding:"omitempty,uuid"`
	Role      string `form:"role"       binding:"omitempty,oneof=user section_admin admin super-admin"`
	Keyword   string `form:"keyword"    binding:"omitempty,max=50"`
}

// AssignRoleRequest 分配角色请求
// section_admin 必须同时指定所属分区
type AssignRoleRequest struct {
	Role      string  `json:"role"       binding:"required,oneof=user section_admin admin super-admin"`
	SectionID *string `json:"section_id" binding:"omitempty,uuid"`
}
