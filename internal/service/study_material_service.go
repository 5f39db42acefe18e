package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nesttask/backend/config"
	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/internal/repository"
	pkgerrors "nesttask/backend/pkg/errors"
	"nesttask/backend/pkg/storage"
)

// ── 学习资料模块业务错误 ──

var (
	ErrStudyMaterialNotFound = errors.New("study material not found")
	ErrMaterialFilesMismatch = errors.New("file urls and original file names must have the same length")
	ErrStorageDisabled       = errors.New("file upload is not enabled")
	ErrFileTooLarge          = errors.New("file exceeds the upload size limit")
	ErrEmptyFile             = errors.New("file is empty")
)

// StudyMaterialService 学习资料业务接口
type StudyMaterialService interface {
	Create(ctx context.Context, auth AuthContext, req *dto.CreateStudyMaterialRequest) (*dto.StudyMaterialResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudyMaterialResponse, error)
	ListByCourse(ctx context.Context, req *dto.StudyMaterialListRequest) ([]dto.StudyMaterialResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudyMaterialRequest) (*dto.StudyMaterialResponse, error)
	Delete(ctx context.Context, id string) error
	// Upload 上传单个文件到对象存储，返回的 URL 与原始文件名可直接用于 Create / Update
	Upload(ctx context.Context, filename, contentType string, size int64, body io.ReadSeeker) (*dto.UploadFileResponse, error)
}

type studyMaterialService struct {
	repo         *repository.Repository
	store        storage.Storage
	maxFileBytes int64
	logger       *zap.Logger
}

// NewStudyMaterialService 创建 StudyMaterialService 实例
func NewStudyMaterialService(
	cfg *config.StorageConfig,
	repo *repository.Repository,
	store storage.Storage,
	logger *zap.Logger,
) StudyMaterialService {
	if store == nil {
		store = storage.Disabled{}
	}
	return &studyMaterialService{
		repo:         repo,
		store:        store,
		maxFileBytes: cfg.MaxFileBytes,
		logger:       logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *studyMaterialService) Create(ctx context.Context, auth AuthContext, req *dto.CreateStudyMaterialRequest) (*dto.StudyMaterialResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}

	urls, names := splitMaterialFiles(req.Files)
	material := &model.StudyMaterial{
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		CourseID:          req.CourseID,
		Category:          req.Category,
		FileURLs:          urls,
		OriginalFileNames: names,
	}
	material.CreatedBy = optionalString(auth.UserID)

	if err := s.repo.StudyMaterial.Create(ctx, material); err != nil {
		return nil, s.translateWriteError("创建学习资料失败", err)
	}

	resp := toStudyMaterialResponse(material)
	return &resp, nil
}

// ────────────────────── GetByID / ListByCourse ──────────────────────

func (s *studyMaterialService) GetByID(ctx context.Context, id string) (*dto.StudyMaterialResponse, error) {
	material, err := s.getMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toStudyMaterialResponse(material)
	return &resp, nil
}

func (s *studyMaterialService) ListByCourse(ctx context.Context, req *dto.StudyMaterialListRequest) ([]dto.StudyMaterialResponse, error) {
	materials, err := s.repo.StudyMaterial.ListByCourse(ctx, req.CourseID, req.Category)
	if err != nil {
		s.logger.Error("列出学习资料失败", zap.String("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudyMaterialResponse, 0, len(materials))
	for i := range materials {
		result = append(result, toStudyMaterialResponse(&materials[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *studyMaterialService) Update(ctx context.Context, id string, req *dto.UpdateStudyMaterialRequest) (*dto.StudyMaterialResponse, error) {
	material, err := s.getMaterial(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		material.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		material.Description = *req.Description
	}
	if req.Category != nil {
		material.Category = *req.Category
	}
	if req.Files != nil {
		material.FileURLs, material.OriginalFileNames = splitMaterialFiles(*req.Files)
	}

	if len(material.FileURLs) != len(material.OriginalFileNames) {
		return nil, ErrMaterialFilesMismatch
	}

	if err := s.repo.StudyMaterial.Update(ctx, material); err != nil {
		return nil, s.translateWriteError("更新学习资料失败", err)
	}

	resp := toStudyMaterialResponse(material)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studyMaterialService) Delete(ctx context.Context, id string) error {
	if err := s.repo.StudyMaterial.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrRowNotAffected) {
			return ErrStudyMaterialNotFound
		}
		s.logger.Error("删除学习资料失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Upload ──────────────────────

func (s *studyMaterialService) Upload(ctx context.Context, filename, contentType string, size int64, body io.ReadSeeker) (*dto.UploadFileResponse, error) {
	if size <= 0 {
		return nil, ErrEmptyFile
	}
	if s.maxFileBytes > 0 && size > s.maxFileBytes {
		return nil, ErrFileTooLarge
	}

	original := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if original == "." || original == "/" || original == "" {
		original = "file"
	}
	key := fmt.Sprintf("materials/%s/%s", uuid.NewString(), original)

	url, err := s.store.Upload(ctx, key, body, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, ErrStorageDisabled
		}
		s.logger.Error("上传文件失败", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.logger.Info("文件已上传", zap.String("key", key), zap.Int64("size", size))
	return &dto.UploadFileResponse{URL: url, OriginalFileName: original}, nil
}

// ── 内部辅助方法 ──

func (s *studyMaterialService) getMaterial(ctx context.Context, id string) (*model.StudyMaterial, error) {
	material, err := s.repo.StudyMaterial.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudyMaterialNotFound
		}
		s.logger.Error("查询学习资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return material, nil
}

func (s *studyMaterialService) translateWriteError(msg string, err error) error {
	switch {
	case pkgerrors.IsCheckViolation(err):
		return ErrMaterialFilesMismatch
	case pkgerrors.IsForeignKeyViolation(err):
		return ErrCourseNotFound
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}
