package service

import (
	"fmt"
	"strings"

	"nesttask/backend/internal/model"
)

// AuthContext 调用方身份
// 由 Handler 从 JWT claims 构造后显式传入 Service，Service 不做任何隐式身份查询
type AuthContext struct {
	UserID    string
	Role      string // 为空表示未认证
	SectionID string
}

// PermissionDeniedError 权限检查未通过
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return "permission denied: " + e.Reason
}

// 可执行课程写操作的角色
var courseMutationRoles = []string{model.RoleAdmin, model.RoleSectionAdmin}

// CheckRole 检查角色是否属于 required 之一
//
// 本文件中的检查均为快速失败的用户体验层校验，不是安全边界：
// 真正的授权由路由层 RoleAuth 中间件与数据库约束负责。
func CheckRole(role string, required ...string) error {
	if role == "" {
		return &PermissionDeniedError{Reason: "not authenticated"}
	}
	for _, r := range required {
		if role == r {
			return nil
		}
	}
	return &PermissionDeniedError{Reason: fmt.Sprintf("role %q is not allowed", role)}
}

// CheckCourseMutation 课程写操作的权限检查
// section_admin 写入的课程必须带 section
func CheckCourseMutation(auth AuthContext, section string) error {
	if err := CheckRole(auth.Role, courseMutationRoles...); err != nil {
		return err
	}
	if auth.Role == model.RoleSectionAdmin && strings.TrimSpace(section) == "" {
		return &PermissionDeniedError{Reason: "section required"}
	}
	return nil
}

// checkSectionScope section_admin 只能在本分区内创建、导入和修改课程
func checkSectionScope(auth AuthContext, section *string) error {
	if auth.Role != model.RoleSectionAdmin {
		return nil
	}
	if section == nil || strings.TrimSpace(*section) != auth.SectionID {
		return &PermissionDeniedError{Reason: "section is outside the caller's section"}
	}
	return nil
}
