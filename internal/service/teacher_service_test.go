package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
)

func setupTestTeacherService() (TeacherService, *testRepos) {
	repo, mocks := newTestRepos()
	return NewTeacherService(repo, zap.NewNop()), mocks
}

func TestTeacherCreate(t *testing.T) {
	svc, mocks := setupTestTeacherService()

	resp, err := svc.Create(context.Background(), &dto.CreateTeacherRequest{Name: "  Dr. X ", Phone: "0123"}, "u-1")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if resp.Name != "Dr. X" {
		t.Errorf("姓名应去除首尾空白，实际=%q", resp.Name)
	}
	stored := mocks.teacher.teachers[resp.ID]
	if stored.CreatedBy == nil || *stored.CreatedBy != "u-1" {
		t.Errorf("created_by 应为调用者，实际=%v", stored.CreatedBy)
	}
}

func TestTeacherList_Keyword(t *testing.T) {
	svc, mocks := setupTestTeacherService()
	mocks.teacher.teachers["t-1"] = &model.Teacher{ID: "t-1", Name: "Alice Rahman"}
	mocks.teacher.teachers["t-2"] = &model.Teacher{ID: "t-2", Name: "Bob Karim"}

	list, total, err := svc.List(context.Background(), &dto.TeacherListRequest{Keyword: "alice"})
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if total != 1 || list[0].ID != "t-1" {
		t.Errorf("期望只匹配 Alice，实际=%+v", list)
	}
}

func TestTeacherUpdate(t *testing.T) {
	svc, mocks := setupTestTeacherService()
	mocks.teacher.teachers["t-1"] = &model.Teacher{ID: "t-1", Name: "Dr. X", Phone: "N/A"}
	phone := "01700000000"

	resp, err := svc.Update(context.Background(), "t-1", &dto.UpdateTeacherRequest{Phone: &phone})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if resp.Phone != phone || resp.Name != "Dr. X" {
		t.Errorf("只应更新电话，实际=%+v", resp)
	}
}

func TestTeacherGetByID_NotFound(t *testing.T) {
	svc, _ := setupTestTeacherService()

	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("期望 ErrTeacherNotFound，实际=%v", err)
	}
}

func TestTeacherDelete_NotFound(t *testing.T) {
	svc, _ := setupTestTeacherService()

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("删除不存在的教师应返回 ErrTeacherNotFound，实际=%v", err)
	}
}
