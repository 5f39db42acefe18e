package repository

import (
	"context"

	"gorm.io/gorm"

	"nesttask/backend/internal/model"
	pkgerrors "nesttask/backend/pkg/errors"
)

// StudyMaterialRepository 学习资料数据访问接口
type StudyMaterialRepository interface {
	Create(ctx context.Context, material *model.StudyMaterial) error
	GetByID(ctx context.Context, id string) (*model.StudyMaterial, error)
	ListByCourse(ctx context.Context, courseID, category string) ([]model.StudyMaterial, error)
	Update(ctx context.Context, material *model.StudyMaterial) error
	Delete(ctx context.Context, id string) error
}

type studyMaterialRepo struct {
	db *gorm.DB
}

// NewStudyMaterialRepo 创建 StudyMaterialRepository 实例
func NewStudyMaterialRepo(db *gorm.DB) StudyMaterialRepository {
	return &studyMaterialRepo{db: db}
}

func (r *studyMaterialRepo) Create(ctx context.Context, material *model.StudyMaterial) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *studyMaterialRepo) GetByID(ctx context.Context, id string) (*model.StudyMaterial, error) {
	var material model.StudyMaterial
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *studyMaterialRepo) ListByCourse(ctx context.Context, courseID, category string) ([]model.StudyMaterial, error) {
	var materials []model.StudyMaterial
	db := r.db.WithContext(ctx).Where("course_id = ?", courseID)
	if category != "" {
		db = db.Where("category = ?", category)
	}
	err := db.Order("created_at DESC").Find(&materials).Error
	return materials, err
}

func (r *studyMaterialRepo) Update(ctx context.Context, material *model.StudyMaterial) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *studyMaterialRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.StudyMaterial{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrRowNotAffected
	}
	return nil
}
