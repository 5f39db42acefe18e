package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"nesttask/backend/config"
	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/pkg/storage"
)

// fakeStorage 记录上传的对象
type fakeStorage struct {
	objects map[string]string
	err     error
}

func (f *fakeStorage) Upload(_ context.Context, key string, body io.ReadSeeker, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = string(data)
	return "https://files.example.com/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func setupTestStudyMaterialService(store storage.Storage) (StudyMaterialService, *testRepos) {
	repo, mocks := newTestRepos()
	cfg := &config.StorageConfig{MaxFileBytes: 16}
	return NewStudyMaterialService(cfg, repo, store, zap.NewNop()), mocks
}

func TestStudyMaterialCreate(t *testing.T) {
	svc, mocks := setupTestStudyMaterialService(nil)
	seedCourse(mocks, "c-1", "CSE101", "")

	resp, err := svc.Create(context.Background(), adminAuth, &dto.CreateStudyMaterialRequest{
		Title:    "Week 1",
		CourseID: "c-1",
		Category: "lecture",
		Files: []dto.MaterialFile{
			{URL: "https://files.example.com/a.pdf", OriginalFileName: "a.pdf"},
			{URL: "https://files.example.com/b.pdf", OriginalFileName: "b.pdf"},
		},
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if len(resp.FileURLs) != 2 || resp.OriginalFileNames[1] != "b.pdf" {
		t.Errorf("文件数组不符: %+v", resp)
	}
}

func TestStudyMaterialCreate_CourseNotFound(t *testing.T) {
	svc, _ := setupTestStudyMaterialService(nil)

	_, err := svc.Create(context.Background(), adminAuth, &dto.CreateStudyMaterialRequest{Title: "x", CourseID: "missing", Category: "lecture"})
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际=%v", err)
	}
}

func TestStudyMaterialListByCourse_Category(t *testing.T) {
	svc, mocks := setupTestStudyMaterialService(nil)
	mocks.material.materials["m-1"] = &model.StudyMaterial{ID: "m-1", CourseID: "c-1", Category: "lecture"}
	mocks.material.materials["m-2"] = &model.StudyMaterial{ID: "m-2", CourseID: "c-1", Category: "exam"}
	mocks.material.materials["m-3"] = &model.StudyMaterial{ID: "m-3", CourseID: "c-2", Category: "lecture"}

	list, err := svc.ListByCourse(context.Background(), &dto.StudyMaterialListRequest{CourseID: "c-1", Category: "lecture"})
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if len(list) != 1 || list[0].ID != "m-1" {
		t.Errorf("期望只返回 m-1，实际=%+v", list)
	}
}

func TestStudyMaterialUpdate_ReplacesFiles(t *testing.T) {
	svc, mocks := setupTestStudyMaterialService(nil)
	mocks.material.materials["m-1"] = &model.StudyMaterial{
		ID: "m-1", CourseID: "c-1", Title: "Old",
		FileURLs: []string{"u1"}, OriginalFileNames: []string{"n1"},
	}
	files := []dto.MaterialFile{}

	resp, err := svc.Update(context.Background(), "m-1", &dto.UpdateStudyMaterialRequest{Files: &files})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if len(resp.FileURLs) != 0 || len(resp.OriginalFileNames) != 0 || resp.Title != "Old" {
		t.Errorf("文件应被清空且标题保持不变，实际=%+v", resp)
	}
}

func TestStudyMaterialDelete_NotFound(t *testing.T) {
	svc, _ := setupTestStudyMaterialService(nil)

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrStudyMaterialNotFound) {
		t.Errorf("期望 ErrStudyMaterialNotFound，实际=%v", err)
	}
}

func TestStudyMaterialUpload(t *testing.T) {
	store := &fakeStorage{objects: map[string]string{}}
	svc, _ := setupTestStudyMaterialService(store)

	resp, err := svc.Upload(context.Background(), `C:\Users\me\notes.pdf`, "application/pdf", 5, strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("上传失败: %v", err)
	}
	if resp.OriginalFileName != "notes.pdf" {
		t.Errorf("原始文件名应只保留文件名部分，实际=%q", resp.OriginalFileName)
	}
	if !strings.HasPrefix(resp.URL, "https://files.example.com/materials/") || !strings.HasSuffix(resp.URL, "/notes.pdf") {
		t.Errorf("URL 不符: %q", resp.URL)
	}
	if len(store.objects) != 1 {
		t.Errorf("期望写入 1 个对象，实际=%d", len(store.objects))
	}
}

func TestStudyMaterialUpload_Limits(t *testing.T) {
	store := &fakeStorage{objects: map[string]string{}}
	svc, _ := setupTestStudyMaterialService(store)

	if _, err := svc.Upload(context.Background(), "a.txt", "text/plain", 0, strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("期望 ErrEmptyFile，实际=%v", err)
	}
	big := strings.Repeat("x", 17)
	if _, err := svc.Upload(context.Background(), "a.txt", "text/plain", int64(len(big)), strings.NewReader(big)); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("期望 ErrFileTooLarge，实际=%v", err)
	}
	if len(store.objects) != 0 {
		t.Error("被拒绝的文件不应写入存储")
	}
}

func TestStudyMaterialUpload_StorageDisabled(t *testing.T) {
	svc, _ := setupTestStudyMaterialService(nil)

	if _, err := svc.Upload(context.Background(), "a.txt", "text/plain", 3, strings.NewReader("abc")); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("期望 ErrStorageDisabled，实际=%v", err)
	}
}
