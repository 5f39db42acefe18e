package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserSelfRoleChange = errors.New("cannot change your own role")
	ErrSectionRequired    = errors.New("section_admin requires a section")
)

// UserService 用户业务接口
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	// List section_admin 只能看到本分区用户
	List(ctx context.Context, auth AuthContext, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	AssignRole(ctx context.Context, auth AuthContext, id string, req *dto.AssignRoleRequest) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, auth AuthContext, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filter := repository.UserFilter{
		SectionID: req.SectionID,
		Role:      req.Role,
		Keyword:   req.Keyword,
	}

	// section_admin 自动过滤为本分区
	if auth.Role == model.RoleSectionAdmin {
		filter.SectionID = auth.SectionID
	}

	users, total, err := s.repo.User.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, auth AuthContext, id string, req *dto.AssignRoleRequest) (*dto.UserResponse, error) {
	if id == auth.UserID {
		return nil, ErrUserSelfRoleChange
	}
	// 只有 super-admin 能授予 super-admin
	if req.Role == model.RoleSuperAdmin {
		if err := CheckRole(auth.Role, model.RoleSuperAdmin); err != nil {
			return nil, err
		}
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SectionID != nil {
		if _, err := s.repo.Section.GetByID(ctx, *req.SectionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSectionNotFound
			}
			return nil, err
		}
		sectionID := *req.SectionID
		user.SectionID = &sectionID
		user.Section = nil
	}
	if req.Role == model.RoleSectionAdmin && user.SectionID == nil {
		return nil, ErrSectionRequired
	}

	previous := user.Role
	user.Role = req.Role

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("分配角色失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("角色已变更",
		zap.String("user_id", id),
		zap.String("from", previous),
		zap.String("to", req.Role),
		zap.String("by", auth.UserID),
	)

	return s.GetByID(ctx, id)
}

// ── 内部辅助方法 ──

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}
