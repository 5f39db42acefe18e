package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"nesttask/backend/internal/model"
	pkgerrors "nesttask/backend/pkg/errors"
)

// TeacherRepository 教师数据访问接口
// 按姓名的查询均不区分大小写
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	GetByName(ctx context.Context, name string) (*model.Teacher, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, keyword string, offset, limit int) ([]model.Teacher, int64, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	Delete(ctx context.Context, id string) error
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// GetByName 同名教师存在多条时取最早创建的一条
func (r *teacherRepo) GetByName(ctx context.Context, name string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Order("created_at ASC").
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("LOWER(name) = LOWER(?)", name).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *teacherRepo) List(ctx context.Context, keyword string, offset, limit int) ([]model.Teacher, int64, error) {
	var teachers []model.Teacher
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Teacher{})
	if kw := strings.TrimSpace(keyword); kw != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&teachers).Error; err != nil {
		return nil, 0, err
	}

	return teachers, total, nil
}

func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Save(teacher).Error
}

// Delete 目标不存在时返回 ErrRowNotAffected；引用该教师的课程 teacher_id 由外键置空
func (r *teacherRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Teacher{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrRowNotAffected
	}
	return nil
}
