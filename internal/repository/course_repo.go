package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"nesttask/backend/internal/model"
	pkgerrors "nesttask/backend/pkg/errors"
)

// CourseFilter 课程列表过滤条件
type CourseFilter struct {
	Section string
	Keyword string // 匹配 name / code，不区分大小写
}

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter CourseFilter, offset, limit int) ([]model.Course, int64, error)
	ListAll(ctx context.Context, filter CourseFilter) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
	CountMaterials(ctx context.Context, courseIDs []string) (map[string]int64, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("code = ?", code).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.Course{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("code ASC").
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *courseRepo) ListAll(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	var courses []model.Course
	err := r.applyFilter(r.db.WithContext(ctx), filter).
		Order("code ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

// Delete 按 ID 删除课程，目标不存在时返回 ErrRowNotAffected
func (r *courseRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrRowNotAffected
	}
	return nil
}

// CountMaterials 批量统计课程下的学习资料数量，未出现的课程计数为 0
func (r *courseRepo) CountMaterials(ctx context.Context, courseIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID string
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.StudyMaterial{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}

func (r *courseRepo) applyFilter(db *gorm.DB, filter CourseFilter) *gorm.DB {
	if filter.Section != "" {
		db = db.Where("section = ?", filter.Section)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	return db
}
