package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"nesttask/backend/internal/model"
	"nesttask/backend/internal/repository"
	pkgerrors "nesttask/backend/pkg/errors"
)

// uniqueViolation 模拟 PostgreSQL 唯一约束冲突
func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"" + constraint + "\"", ConstraintName: constraint}
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses     map[string]*model.Course
	createCalls int
	nextID      int

	createErr map[string]error // code → 写入时返回的错误
	panicOn   map[string]bool
	existsErr error
	counts    map[string]int64
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		courses:   make(map[string]*model.Course),
		createErr: make(map[string]error),
		panicOn:   make(map[string]bool),
		counts:    make(map[string]int64),
	}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	m.createCalls++
	if m.panicOn[course.Code] {
		panic("mock course repo: injected panic")
	}
	if err, ok := m.createErr[course.Code]; ok {
		return err
	}
	for _, c := range m.courses {
		if c.Code == course.Code {
			return uniqueViolation("courses_code_key")
		}
	}
	if course.ID == "" {
		m.nextID++
		course.ID = fmt.Sprintf("course-%d", m.nextID)
	}
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, err := m.GetByCode(ctx, code)
	return err == nil, nil
}

func (m *mockCourseRepo) List(ctx context.Context, filter repository.CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	all, _ := m.ListAll(ctx, filter)
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Course{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockCourseRepo) ListAll(_ context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if filter.Section != "" && (c.Section == nil || *c.Section != filter.Section) {
			continue
		}
		if kw := strings.ToLower(filter.Keyword); kw != "" &&
			!strings.Contains(strings.ToLower(c.Name), kw) && !strings.Contains(strings.ToLower(c.Code), kw) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	cp := *course
	m.courses[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return pkgerrors.ErrRowNotAffected
	}
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) CountMaterials(_ context.Context, courseIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(courseIDs))
	for _, id := range courseIDs {
		result[id] = m.counts[id]
	}
	return result, nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	teachers    map[string]*model.Teacher
	createCalls int
	nextID      int

	createErr error
	existsErr error
	getErr    error
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (m *mockTeacherRepo) Create(_ context.Context, teacher *model.Teacher) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if teacher.ID == "" {
		m.nextID++
		teacher.ID = fmt.Sprintf("teacher-%d", m.nextID)
	}
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByName(_ context.Context, name string) (*model.Teacher, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, t := range m.teachers {
		if strings.EqualFold(t.Name, name) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, t := range m.teachers {
		if strings.EqualFold(t.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTeacherRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.Teacher, int64, error) {
	var result []model.Teacher
	for _, t := range m.teachers {
		if keyword != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(keyword)) {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	if offset >= len(result) {
		return []model.Teacher{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, teacher *model.Teacher) error {
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.teachers[id]; !ok {
		return pkgerrors.ErrRowNotAffected
	}
	delete(m.teachers, id)
	return nil
}

// findByName 测试断言用
func (m *mockTeacherRepo) findByName(name string) *model.Teacher {
	for _, t := range m.teachers {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ── Mock StudyMaterialRepository ──

type mockStudyMaterialRepo struct {
	materials map[string]*model.StudyMaterial
	nextID    int
}

func newMockStudyMaterialRepo() *mockStudyMaterialRepo {
	return &mockStudyMaterialRepo{materials: make(map[string]*model.StudyMaterial)}
}

func (m *mockStudyMaterialRepo) Create(_ context.Context, material *model.StudyMaterial) error {
	if len(material.FileURLs) != len(material.OriginalFileNames) {
		return &pgconn.PgError{Code: "23514", Message: "violates check constraint", ConstraintName: "study_materials_files_parallel"}
	}
	if material.ID == "" {
		m.nextID++
		material.ID = fmt.Sprintf("material-%d", m.nextID)
	}
	m.materials[material.ID] = material
	return nil
}

func (m *mockStudyMaterialRepo) GetByID(_ context.Context, id string) (*model.StudyMaterial, error) {
	if mt, ok := m.materials[id]; ok {
		cp := *mt
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudyMaterialRepo) ListByCourse(_ context.Context, courseID, category string) ([]model.StudyMaterial, error) {
	var result []model.StudyMaterial
	for _, mt := range m.materials {
		if mt.CourseID != courseID || (category != "" && mt.Category != category) {
			continue
		}
		result = append(result, *mt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStudyMaterialRepo) Update(_ context.Context, material *model.StudyMaterial) error {
	m.materials[material.ID] = material
	return nil
}

func (m *mockStudyMaterialRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.materials[id]; !ok {
		return pkgerrors.ErrRowNotAffected
	}
	delete(m.materials, id)
	return nil
}

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	sections map[string]*model.Section
	members  map[string]int64
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{
		sections: make(map[string]*model.Section),
		members:  make(map[string]int64),
	}
}

func (m *mockSectionRepo) Create(_ context.Context, section *model.Section) error {
	if section.ID == "" {
		section.ID = "sec-" + section.Name
	}
	m.sections[section.ID] = section
	return nil
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) GetByName(_ context.Context, name string) (*model.Section, error) {
	for _, s := range m.sections {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) List(_ context.Context, includeInactive bool) ([]model.Section, error) {
	var result []model.Section
	for _, s := range m.sections {
		if !includeInactive && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSectionRepo) Update(_ context.Context, section *model.Section) error {
	m.sections[section.ID] = section
	return nil
}

func (m *mockSectionRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.sections[id]; !ok {
		return pkgerrors.ErrRowNotAffected
	}
	delete(m.sections, id)
	return nil
}

func (m *mockSectionRepo) CountMembers(_ context.Context, sectionID string) (int64, error) {
	return m.members[sectionID], nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = "uid-" + user.Email
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filter.SectionID != "" && (u.SectionID == nil || *u.SectionID != filter.SectionID) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	total := int64(len(result))
	if offset >= len(result) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// ── 测试仓储聚合 ──

type testRepos struct {
	course   *mockCourseRepo
	teacher  *mockTeacherRepo
	material *mockStudyMaterialRepo
	section  *mockSectionRepo
	user     *mockUserRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	r := &testRepos{
		course:   newMockCourseRepo(),
		teacher:  newMockTeacherRepo(),
		material: newMockStudyMaterialRepo(),
		section:  newMockSectionRepo(),
		user:     newMockUserRepo(),
	}
	return &repository.Repository{
		User:          r.user,
		Section:       r.section,
		Course:        r.course,
		Teacher:       r.teacher,
		StudyMaterial: r.material,
	}, r
}
