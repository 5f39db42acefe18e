package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/internal/repository"
	"nesttask/backend/pkg/classtime"
	pkgerrors "nesttask/backend/pkg/errors"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrCourseCodeExists = errors.New("course code already exists")
	ErrInvalidClassTime = errors.New("invalid class time")
	ErrCourseFieldBlank = errors.New("course name and code must not be blank")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, auth AuthContext, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error)
	Update(ctx context.Context, auth AuthContext, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	// Delete 课程不存在时返回 ErrCourseNotFound
	Delete(ctx context.Context, auth AuthContext, id string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, auth AuthContext, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if err := CheckCourseMutation(auth, req.Section); err != nil {
		return nil, err
	}

	section := strings.TrimSpace(req.Section)
	if section == "" {
		section = auth.SectionID
	}
	if err := checkSectionScope(auth, &section); err != nil {
		return nil, err
	}

	name, code := strings.TrimSpace(req.Name), strings.TrimSpace(req.Code)
	if name == "" || code == "" {
		return nil, ErrCourseFieldBlank
	}

	classTime, err := classtime.Encode(req.ClassTimes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClassTime, err)
	}

	exists, err := s.repo.Course.ExistsByCode(ctx, code)
	if err != nil {
		s.logger.Error("课程查重失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrCourseCodeExists
	}

	teacherID, err := s.resolveTeacherID(ctx, req.TeacherID, req.Teacher)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		Name:          name,
		Code:          code,
		Teacher:       strings.TrimSpace(req.Teacher),
		ClassTime:     classTime,
		TelegramGroup: req.TelegramGroup,
		BLCLink:       req.BLCLink,
		BLCEnrollKey:  req.BLCEnrollKey,
		Credit:        req.Credit,
		Section:       optionalString(section),
		TeacherID:     teacherID,
	}
	course.CreatedBy = optionalString(auth.UserID)

	if err := s.repo.Course.Create(ctx, course); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("创建课程失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course, 0)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.Course.CountMaterials(ctx, []string{course.ID})
	if err != nil {
		s.logger.Warn("查询资料数失败，回退为0", zap.String("id", id), zap.Error(err))
		counts = map[string]int64{}
	}

	resp := toCourseResponse(course, counts[course.ID])
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error) {
	filter := repository.CourseFilter{Section: req.Section, Keyword: req.Keyword}
	courses, total, err := s.repo.Course.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, 0, err
	}

	// 批量查询资料数，避免 N+1
	ids := make([]string, 0, len(courses))
	for i := range courses {
		ids = append(ids, courses[i].ID)
	}
	counts, err := s.repo.Course.CountMaterials(ctx, ids)
	if err != nil {
		s.logger.Warn("批量查询资料数失败，回退为0", zap.Error(err))
		counts = map[string]int64{}
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i], counts[courses[i].ID]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, auth AuthContext, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := CheckCourseMutation(auth, derefString(course.Section)); err != nil {
		return nil, err
	}
	if err := checkSectionScope(auth, course.Section); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrCourseFieldBlank
		}
		course.Name = name
	}
	if req.ClassTimes != nil {
		classTime, err := classtime.Encode(*req.ClassTimes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClassTime, err)
		}
		course.ClassTime = classTime
	}
	if req.Teacher != nil || req.TeacherID != nil {
		name := course.Teacher
		if req.Teacher != nil {
			name = strings.TrimSpace(*req.Teacher)
		}
		teacherID, err := s.resolveTeacherID(ctx, req.TeacherID, name)
		if err != nil {
			return nil, err
		}
		course.Teacher = name
		course.TeacherID = teacherID
	}
	if req.TelegramGroup != nil {
		course.TelegramGroup = *req.TelegramGroup
	}
	if req.BLCLink != nil {
		course.BLCLink = *req.BLCLink
	}
	if req.BLCEnrollKey != nil {
		course.BLCEnrollKey = *req.BLCEnrollKey
	}
	if req.Credit != nil {
		course.Credit = *req.Credit
	}
	if req.Section != nil {
		// section_admin 不能把课程移出本分区
		if err := CheckCourseMutation(auth, *req.Section); err != nil {
			return nil, err
		}
		section := optionalString(strings.TrimSpace(*req.Section))
		if err := checkSectionScope(auth, section); err != nil {
			return nil, err
		}
		course.Section = section
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, auth AuthContext, id string) error {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return err
	}
	if err := CheckCourseMutation(auth, derefString(course.Section)); err != nil {
		return err
	}
	if err := checkSectionScope(auth, course.Section); err != nil {
		return err
	}

	if err := s.repo.Course.Delete(ctx, id); err != nil {
		// 读取与删除之间被其他请求删除
		if errors.Is(err, pkgerrors.ErrRowNotAffected) {
			return ErrCourseNotFound
		}
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("课程已删除", zap.String("id", id), zap.String("code", course.Code), zap.String("by", auth.UserID))
	return nil
}

// ── 内部辅助方法 ──

func (s *courseService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// resolveTeacherID 显式给出的 teacher_id 必须存在；只给姓名时按姓名查找，找不到不报错
// 单条创建不自动建教师，自动创建只发生在批量导入
func (s *courseService) resolveTeacherID(ctx context.Context, teacherID *string, name string) (*string, error) {
	if teacherID != nil && *teacherID != "" {
		if _, err := s.repo.Teacher.GetByID(ctx, *teacherID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeacherNotFound
			}
			return nil, err
		}
		id := *teacherID
		return &id, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	teacher, err := s.repo.Teacher.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("按姓名查询教师失败", zap.String("teacher", name), zap.Error(err))
		}
		return nil, nil
	}
	return &teacher.ID, nil
}
