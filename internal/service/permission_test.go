package service

import (
	"errors"
	"testing"

	"nesttask/backend/internal/model"
)

func TestCheckRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed bool
	}{
		{"admin", model.RoleAdmin, true},
		{"section_admin", model.RoleSectionAdmin, true},
		{"普通用户", model.RoleUser, false},
		{"super-admin 不在集合内", model.RoleSuperAdmin, false},
		{"未认证", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRole(tt.role, model.RoleAdmin, model.RoleSectionAdmin)
			if tt.allowed && err != nil {
				t.Errorf("期望允许，实际: %v", err)
			}
			if !tt.allowed {
				var pd *PermissionDeniedError
				if !errors.As(err, &pd) {
					t.Errorf("期望 PermissionDeniedError，实际: %v", err)
				}
			}
		})
	}
}

func TestCheckCourseMutation_SectionAdminRequiresSection(t *testing.T) {
	auth := AuthContext{UserID: "u1", Role: model.RoleSectionAdmin, SectionID: "sec-a"}

	err := CheckCourseMutation(auth, "  ")
	var pd *PermissionDeniedError
	if !errors.As(err, &pd) {
		t.Fatalf("期望 PermissionDeniedError，实际: %v", err)
	}
	if pd.Reason != "section required" {
		t.Errorf("期望原因=section required，实际=%q", pd.Reason)
	}

	if err := CheckCourseMutation(auth, "sec-a"); err != nil {
		t.Errorf("带 section 时应允许，实际: %v", err)
	}
}

func TestCheckCourseMutation_AdminAnySection(t *testing.T) {
	auth := AuthContext{UserID: "u1", Role: model.RoleAdmin}

	for _, section := range []string{"", "sec-a", "sec-b"} {
		if err := CheckCourseMutation(auth, section); err != nil {
			t.Errorf("admin section=%q 应允许，实际: %v", section, err)
		}
	}
}

func TestCheckSectionScope(t *testing.T) {
	own, other := "sec-a", "sec-b"
	sa := AuthContext{Role: model.RoleSectionAdmin, SectionID: own}

	if err := checkSectionScope(sa, &own); err != nil {
		t.Errorf("本分区应允许，实际: %v", err)
	}
	if err := checkSectionScope(sa, &other); err == nil {
		t.Error("其他分区应拒绝")
	}
	if err := checkSectionScope(sa, nil); err == nil {
		t.Error("无分区课程应拒绝")
	}
	if err := checkSectionScope(AuthContext{Role: model.RoleAdmin}, &other); err != nil {
		t.Errorf("admin 不受分区限制，实际: %v", err)
	}
}
