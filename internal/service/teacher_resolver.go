package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nesttask/backend/internal/model"
	"nesttask/backend/internal/repository"
	pkgerrors "nesttask/backend/pkg/errors"
)

// TeacherResolution 教师解析结果
// Warning 非空时由调用方记录为一条 warning；TeacherID 为 nil 表示课程不关联教师 ID
type TeacherResolution struct {
	TeacherID *string
	Created   bool
	Warning   string
}

// TeacherResolver 按姓名解析教师，不存在时自动创建
// 解析失败从不返回错误，最坏结果是不带教师 ID 继续
type TeacherResolver interface {
	Resolve(ctx context.Context, name, department string) TeacherResolution
}

type teacherResolver struct {
	repo             *repository.Repository
	phonePlaceholder string
	logger           *zap.Logger
}

// NewTeacherResolver 创建 TeacherResolver 实例
func NewTeacherResolver(repo *repository.Repository, phonePlaceholder string, logger *zap.Logger) TeacherResolver {
	if phonePlaceholder == "" {
		phonePlaceholder = "N/A"
	}
	return &teacherResolver{repo: repo, phonePlaceholder: phonePlaceholder, logger: logger}
}

func (r *teacherResolver) Resolve(ctx context.Context, name, department string) TeacherResolution {
	name = strings.TrimSpace(name)
	if name == "" {
		return TeacherResolution{}
	}

	exists, err := r.repo.Teacher.ExistsByName(ctx, name)
	if err != nil {
		// 查询失败按不存在处理
		r.logger.Warn("查询教师是否存在失败", zap.String("teacher", name), zap.Error(err))
		exists = false
	}

	if !exists {
		return r.create(ctx, name, department)
	}

	teacher, err := r.repo.Teacher.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("查询教师 ID 失败", zap.String("teacher", name), zap.Error(err))
		}
		return TeacherResolution{}
	}
	return TeacherResolution{TeacherID: &teacher.ID}
}

func (r *teacherResolver) create(ctx context.Context, name, department string) TeacherResolution {
	teacher := &model.Teacher{
		Name:       name,
		Phone:      r.phonePlaceholder,
		Department: department,
	}
	if err := r.repo.Teacher.Create(ctx, teacher); err != nil {
		r.logger.Warn("自动创建教师失败", zap.String("teacher", name), zap.Error(err))
		return TeacherResolution{
			Warning: fmt.Sprintf("Failed to create teacher %q: %s", name, pkgerrors.StoreMessage(err)),
		}
	}

	r.logger.Info("自动创建教师", zap.String("teacher", name), zap.String("teacher_id", teacher.ID))
	return TeacherResolution{
		TeacherID: &teacher.ID,
		Created:   true,
		Warning:   fmt.Sprintf("Teacher %q was created automatically", name),
	}
}
