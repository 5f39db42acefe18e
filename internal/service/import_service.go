package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"nesttask/backend/config"
	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/internal/repository"
	"nesttask/backend/pkg/classtime"
	pkgerrors "nesttask/backend/pkg/errors"
	"nesttask/backend/pkg/metrics"
)

// ── 导入模块业务错误 ──

var (
	ErrImportNoData      = errors.New("import file contains no data rows")
	ErrImportBadHeader   = errors.New("import file must have name and code columns")
	ErrImportTooManyRows = errors.New("import file exceeds the row limit")
)

// ImportRowError 导入文件中某一行的单元格无法解析，挂在该行的 CourseCandidate 上
type ImportRowError struct {
	Row    int
	Column string
	Err    error
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
}

func (e *ImportRowError) Unwrap() error { return e.Err }

// ImportService 课程批量导入业务接口
type ImportService interface {
	// BulkImportCourses 按输入顺序逐行导入课程
	//
	// 严格串行：每行的查重、教师解析、写入全部完成后才处理下一行，
	// 因此第 N 行自动创建的教师对第 N+1 行可见。实现不得并行化。
	// 单行失败不影响其余行；整批拒绝时报告中只有一条 abort。
	BulkImportCourses(ctx context.Context, auth AuthContext, candidates []dto.CourseCandidate) *dto.CourseImportReport
	// ParseCourseFile 解析课程导入 Excel（首个工作表，首行为表头）
	ParseCourseFile(reader io.Reader) ([]dto.CourseCandidate, error)
}

type importService struct {
	repo     *repository.Repository
	resolver TeacherResolver
	validate *validator.Validate
	metrics  *metrics.Metrics
	maxRows  int
	logger   *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(
	cfg *config.ImportConfig,
	repo *repository.Repository,
	resolver TeacherResolver,
	m *metrics.Metrics,
	logger *zap.Logger,
) ImportService {
	return &importService{
		repo:     repo,
		resolver: resolver,
		validate: newCandidateValidator(),
		metrics:  m,
		maxRows:  cfg.MaxRows,
		logger:   logger,
	}
}

// newCandidateValidator 校验错误中的字段名使用 json tag
func newCandidateValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ────────────────────── BulkImportCourses ──────────────────────

func (s *importService) BulkImportCourses(ctx context.Context, auth AuthContext, candidates []dto.CourseCandidate) *dto.CourseImportReport {
	start := time.Now()
	report := &dto.CourseImportReport{
		Total:  len(candidates),
		Errors: []dto.ImportOutcome{},
	}

	// 批次级检查：未通过时不处理任何行
	if err := CheckRole(auth.Role, courseMutationRoles...); err != nil {
		s.addOutcome(report, 0, "", dto.OutcomeAbort, err.Error())
		s.logger.Warn("课程批量导入被拒绝", zap.String("user_id", auth.UserID), zap.String("role", auth.Role))
		return report
	}
	if s.maxRows > 0 && len(candidates) > s.maxRows {
		s.addOutcome(report, 0, "", dto.OutcomeAbort,
			fmt.Sprintf("batch of %d rows exceeds the limit of %d", len(candidates), s.maxRows))
		return report
	}

	for i := range candidates {
		row := candidates[i].SourceRow
		if row <= 0 {
			row = i + 1
		}
		if ctx.Err() != nil {
			// 请求已取消，剩余行不再处理
			s.addOutcome(report, row, candidates[i].Code, dto.OutcomeError, "import cancelled: "+ctx.Err().Error())
			break
		}
		if s.importRow(ctx, auth, row, &candidates[i], report) {
			report.Success++
		}
	}

	s.metrics.ObserveImportBatch(time.Since(start))
	s.logger.Info("课程批量导入完成",
		zap.String("user_id", auth.UserID),
		zap.Int("total", report.Total),
		zap.Int("success", report.Success),
		zap.Int("outcomes", len(report.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report
}

// importRow 处理单行，返回是否写入成功
// 行内 panic 在此恢复为该行的 error，不会中断批次
func (s *importService) importRow(ctx context.Context, auth AuthContext, row int, c *dto.CourseCandidate, report *dto.CourseImportReport) (inserted bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("导入行发生 panic", zap.Int("row", row), zap.String("code", c.Code), zap.Any("panic", r))
			s.addOutcome(report, row, c.Code, dto.OutcomeError, fmt.Sprintf("unexpected error: %v", r))
			inserted = false
		}
	}()

	// 先去除首尾空白，纯空白的必填字段由校验拒绝
	c = normalizeCandidate(c)
	code := c.Code

	// 1. section_admin 必须指定本分区的 section，否则跳过
	if err := CheckCourseMutation(auth, c.Section); err != nil {
		s.addOutcome(report, row, code, dto.OutcomeWarning, "Skipped: "+err.Error())
		return false
	}
	if err := checkSectionScope(auth, &c.Section); err != nil {
		s.addOutcome(report, row, code, dto.OutcomeWarning, "Skipped: "+err.Error())
		return false
	}

	// 2. 单元格解析失败与结构校验
	if c.ParseError != nil {
		s.addOutcome(report, row, code, dto.OutcomeError, describeParseError(c.ParseError))
		return false
	}
	if err := s.validate.Struct(c); err != nil {
		s.addOutcome(report, row, code, dto.OutcomeError, describeValidation(err))
		return false
	}

	// 3. 编码上课时间
	classTime, err := classtime.Encode(c.ClassTimes)
	if err != nil {
		s.addOutcome(report, row, code, dto.OutcomeError, "Invalid class time: "+err.Error())
		return false
	}

	// 4. 按 code 查重
	exists, err := s.repo.Course.ExistsByCode(ctx, code)
	if err != nil {
		s.logger.Warn("课程查重失败", zap.Int("row", row), zap.String("code", code), zap.Error(err))
		s.addOutcome(report, row, code, dto.OutcomeError, "Failed to check existing course: "+pkgerrors.StoreMessage(err))
		return false
	}
	if exists {
		s.addOutcome(report, row, code, dto.OutcomeError, duplicateCodeMessage(code))
		return false
	}

	// 5. 教师解析
	section := c.Section
	if section == "" {
		section = auth.SectionID
	}
	var teacherID *string
	if id := c.TeacherID; id != "" {
		teacherID = &id
	} else if c.Teacher != "" {
		res := s.resolver.Resolve(ctx, c.Teacher, section)
		teacherID = res.TeacherID
		if res.Warning != "" {
			s.addOutcome(report, row, code, dto.OutcomeWarning, res.Warning)
		}
	}

	// 6. 写入
	course := &model.Course{
		Name:          c.Name,
		Code:          code,
		Teacher:       c.Teacher,
		ClassTime:     classTime,
		TelegramGroup: c.TelegramGroup,
		BLCLink:       c.BLCLink,
		BLCEnrollKey:  c.BLCEnrollKey,
		Credit:        c.Credit,
		Section:       optionalString(section),
		TeacherID:     teacherID,
	}
	course.CreatedBy = optionalString(auth.UserID)

	if err := s.repo.Course.Create(ctx, course); err != nil {
		msg := "Failed to insert course: " + pkgerrors.StoreMessage(err)
		if pkgerrors.IsUniqueViolation(err) {
			// 并发导入时同 code 已被其他批次写入
			msg = duplicateCodeMessage(code)
		}
		s.logger.Warn("导入课程写入失败", zap.Int("row", row), zap.String("code", code), zap.Error(err))
		s.addOutcome(report, row, code, dto.OutcomeError, msg)
		return false
	}

	s.metrics.ObserveImportInserted()
	return true
}

func (s *importService) addOutcome(report *dto.CourseImportReport, row int, code, kind, message string) {
	report.Errors = append(report.Errors, dto.ImportOutcome{
		Row:     row,
		Code:    code,
		Kind:    kind,
		Message: message,
	})
	s.metrics.ObserveImportOutcome(kind)
}

// normalizeCandidate 返回去除首尾空白后的副本，不修改调用方的切片
func normalizeCandidate(c *dto.CourseCandidate) *dto.CourseCandidate {
	n := *c
	n.Name = strings.TrimSpace(n.Name)
	n.Code = strings.TrimSpace(n.Code)
	n.Teacher = strings.TrimSpace(n.Teacher)
	n.TeacherID = strings.TrimSpace(n.TeacherID)
	n.TelegramGroup = strings.TrimSpace(n.TelegramGroup)
	n.BLCLink = strings.TrimSpace(n.BLCLink)
	n.BLCEnrollKey = strings.TrimSpace(n.BLCEnrollKey)
	n.Section = strings.TrimSpace(n.Section)
	return &n
}

func describeParseError(err error) string {
	var rowErr *ImportRowError
	if errors.As(err, &rowErr) {
		return fmt.Sprintf("Invalid %s: %v", rowErr.Column, rowErr.Err)
	}
	return "Invalid row: " + err.Error()
}

func duplicateCodeMessage(code string) string {
	return fmt.Sprintf("Course with code %s already exists", code)
}

// describeValidation 将校验错误转为单行可读信息
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid course: " + err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return "Invalid course: " + strings.Join(parts, "; ")
}

// ────────────────────── ParseCourseFile ──────────────────────

// 导入表头，列序不限
const (
	colName          = "name"
	colCode          = "code"
	colTeacher       = "teacher"
	colTeacherID     = "teacher_id"
	colClassTime     = "class_time"
	colTelegramGroup = "telegram_group"
	colBLCLink       = "blc_link"
	colBLCEnrollKey  = "blc_enroll_key"
	colCredit        = "credit"
	colSection       = "section"
)

var headerAliases = map[string]string{
	"name": colName, "course name": colName, "course": colName,
	"code": colCode, "course code": colCode,
	"teacher": colTeacher, "teacher name": colTeacher, "instructor": colTeacher,
	"teacher_id": colTeacherID, "teacher id": colTeacherID,
	"class_time": colClassTime, "class time": colClassTime, "class times": colClassTime, "schedule": colClassTime,
	"telegram_group": colTelegramGroup, "telegram group": colTelegramGroup, "telegram": colTelegramGroup,
	"blc_link": colBLCLink, "blc link": colBLCLink,
	"blc_enroll_key": colBLCEnrollKey, "blc enroll key": colBLCEnrollKey, "enroll key": colBLCEnrollKey,
	"credit": colCredit, "credits": colCredit,
	"section": colSection,
}

func (s *importService) ParseCourseFile(reader io.Reader) ([]dto.CourseCandidate, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if _, ok := colIndex[colName]; !ok {
		return nil, ErrImportBadHeader
	}
	if _, ok := colIndex[colCode]; !ok {
		return nil, ErrImportBadHeader
	}

	var candidates []dto.CourseCandidate
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		get := func(col string) string {
			idx, ok := colIndex[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		// 跳过全空行
		if isBlankRow(row) {
			continue
		}

		// 单元格错误记录在该行上，由 BulkImportCourses 报告，其余行照常导入
		c := dto.CourseCandidate{
			SourceRow:     i + 1,
			Name:          get(colName),
			Code:          get(colCode),
			Teacher:       get(colTeacher),
			TeacherID:     get(colTeacherID),
			TelegramGroup: get(colTelegramGroup),
			BLCLink:       get(colBLCLink),
			BLCEnrollKey:  get(colBLCEnrollKey),
			Section:       get(colSection),
		}

		entries, err := classtime.Decode(get(colClassTime))
		if err != nil {
			c.ParseError = &ImportRowError{Row: i + 1, Column: colClassTime, Err: err}
		}
		c.ClassTimes = entries

		if raw := get(colCredit); raw != "" && c.ParseError == nil {
			credit, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				c.ParseError = &ImportRowError{Row: i + 1, Column: colCredit, Err: fmt.Errorf("not a number: %q", raw)}
			}
			c.Credit = credit
		}

		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, ErrImportNoData
	}
	if s.maxRows > 0 && len(candidates) > s.maxRows {
		return nil, ErrImportTooManyRows
	}

	return candidates, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射；无法识别的列被忽略
func parseHeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if col, ok := headerAliases[key]; ok {
			if _, seen := idx[col]; !seen {
				idx[col] = i
			}
		}
	}
	return idx
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
