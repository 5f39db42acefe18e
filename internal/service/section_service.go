package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/internal/repository"
	pkgerrors "nesttask/backend/pkg/errors"
)

// ── 分区模块业务错误 ──

var (
	ErrSectionNotFound   = errors.New("section not found")
	ErrSectionNameExists = errors.New("section name already exists")
	ErrSectionHasMembers = errors.New("section still has members")
)

// SectionService 分区业务接口
type SectionService interface {
	Create(ctx context.Context, req *dto.CreateSectionRequest, callerID string) (*dto.SectionDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SectionDetailResponse, error)
	List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSectionRequest) (*dto.SectionDetailResponse, error)
	Delete(ctx context.Context, id string) error
}

type sectionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSectionService 创建 SectionService 实例
func NewSectionService(repo *repository.Repository, logger *zap.Logger) SectionService {
	return &sectionService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *sectionService) Create(ctx context.Context, req *dto.CreateSectionRequest, callerID string) (*dto.SectionDetailResponse, error) {
	// 检查名称唯一性
	existing, err := s.repo.Section.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询分区失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrSectionNameExists
	}

	section := &model.Section{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	section.CreatedBy = optionalString(callerID)

	if err := s.repo.Section.Create(ctx, section); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSectionNameExists
		}
		s.logger.Error("创建分区失败", zap.Error(err))
		return nil, err
	}

	resp := toSectionDetailResponse(section, 0)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *sectionService) GetByID(ctx context.Context, id string) (*dto.SectionDetailResponse, error) {
	section, err := s.getSection(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withMemberCount(ctx, section), nil
}

// ────────────────────── List ──────────────────────

func (s *sectionService) List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionDetailResponse, error) {
	sections, err := s.repo.Section.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出分区失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SectionDetailResponse, 0, len(sections))
	for i := range sections {
		result = append(result, *s.withMemberCount(ctx, &sections[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *sectionService) Update(ctx context.Context, id string, req *dto.UpdateSectionRequest) (*dto.SectionDetailResponse, error) {
	section, err := s.getSection(ctx, id)
	if err != nil {
		return nil, err
	}

	// 如果更新名称，检查唯一性
	if req.Name != nil && *req.Name != section.Name {
		existing, err := s.repo.Section.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrSectionNameExists
		}
		section.Name = *req.Name
	}
	if req.Description != nil {
		section.Description = *req.Description
	}
	if req.IsActive != nil {
		section.IsActive = *req.IsActive
	}

	if err := s.repo.Section.Update(ctx, section); err != nil {
		s.logger.Error("更新分区失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.withMemberCount(ctx, section), nil
}

// ────────────────────── Delete ──────────────────────

func (s *sectionService) Delete(ctx context.Context, id string) error {
	count, err := s.repo.Section.CountMembers(ctx, id)
	if err != nil {
		s.logger.Error("查询分区成员数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrSectionHasMembers
	}

	if err := s.repo.Section.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrRowNotAffected) {
			return ErrSectionNotFound
		}
		s.logger.Error("删除分区失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *sectionService) getSection(ctx context.Context, id string) (*model.Section, error) {
	section, err := s.repo.Section.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询分区失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return section, nil
}

func (s *sectionService) withMemberCount(ctx context.Context, section *model.Section) *dto.SectionDetailResponse {
	count, err := s.repo.Section.CountMembers(ctx, section.ID)
	if err != nil {
		s.logger.Warn("查询分区成员数失败，回退为0", zap.String("id", section.ID), zap.Error(err))
	}
	resp := toSectionDetailResponse(section, count)
	return &resp
}
