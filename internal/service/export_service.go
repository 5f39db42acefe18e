package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nesttask/backend/internal/repository"
	"nesttask/backend/pkg/classtime"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoCourses    = errors.New("no courses to export")
	ErrExportGenerateFail = errors.New("failed to generate export file")
	ErrCalendarNoSchedule = errors.New("course has no recognisable class times")
)

const (
	defaultCalendarWeeks = 16
	defaultClassLength   = 90 * time.Minute
)

// ExportService 导出业务接口
//
//   - 课程列表导出为 Excel，列与导入模板一致，导出文件可直接再次导入
//   - 单门课程的上课时间导出为 iCalendar，每个上课时间条目生成一个按周重复的事件
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头
type ExportService interface {
	ExportCourses(ctx context.Context, section string) (*bytes.Buffer, string, error)
	// CourseCalendar from 为起始日期，weeks <= 0 时使用默认周数
	CourseCalendar(ctx context.Context, courseID string, from time.Time, weeks int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
// loc 为课程上课时间所在时区，nil 时使用 UTC
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, loc: loc, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCourses 导出课程列表为 Excel
// ═══════════════════════════════════════════════════════════

var exportColumns = []string{
	colName, colCode, colTeacher, colTeacherID, colClassTime,
	colTelegramGroup, colBLCLink, colBLCEnrollKey, colCredit, colSection,
}

func (s *exportService) ExportCourses(ctx context.Context, section string) (*bytes.Buffer, string, error) {
	courses, err := s.repo.Course.ListAll(ctx, repository.CourseFilter{Section: section})
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}
	if len(courses) == 0 {
		return nil, "", ErrExportNoCourses
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Courses"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range exportColumns {
		f.SetCellValue(sheetName, cellName(i, 1), h)
	}
	f.SetCellStyle(sheetName, cellName(0, 1), cellName(len(exportColumns)-1, 1), headerStyle)
	f.SetColWidth(sheetName, "A", "A", 32)
	f.SetColWidth(sheetName, "E", "E", 40)

	// 数据行
	for r, c := range courses {
		row := r + 2
		values := []interface{}{
			c.Name, c.Code, c.Teacher, derefString(c.TeacherID), c.ClassTime,
			c.TelegramGroup, c.BLCLink, c.BLCEnrollKey, c.Credit, derefString(c.Section),
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cellName(i, row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := "courses.xlsx"
	if section != "" {
		filename = fmt.Sprintf("courses_%s.xlsx", section)
	}
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// CourseCalendar 导出课程上课时间为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 星期与时间均为自由文本，只处理能识别的条目：
//   - 星期取前三个字母（Sun / Monday / TUE ...）
//   - 时间取前两个 hh:mm（可带 AM/PM），只有一个时取默认课时
// 无法识别的条目被跳过并记录日志。

func (s *exportService) CourseCalendar(ctx context.Context, courseID string, from time.Time, weeks int) (*bytes.Buffer, string, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", courseID), zap.Error(err))
		return nil, "", err
	}
	if weeks <= 0 {
		weeks = defaultCalendarWeeks
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//NestTask//Course Calendar//EN")
	cal.SetXWRCalName(fmt.Sprintf("%s %s", course.Code, course.Name))

	now := time.Now().UTC()
	events := 0
	for i, entry := range classtime.DecodeLenient(course.ClassTime) {
		start, end, ok := s.firstOccurrence(entry, from)
		if !ok {
			s.logger.Debug("跳过无法识别的上课时间", zap.String("course", course.Code), zap.Any("entry", entry))
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%d@nesttask", course.ID, i))
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s %s", course.Code, course.Name))
		if entry.Classroom != "" {
			event.SetLocation(entry.Classroom)
		}
		if course.Teacher != "" {
			event.SetDescription("Teacher: " + course.Teacher)
		}
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", weeks))
		events++
	}

	if events == 0 {
		return nil, "", ErrCalendarNoSchedule
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, fmt.Sprintf("%s.ics", course.Code), nil
}

// firstOccurrence 计算条目在 from 当天或之后的第一次上课时间
func (s *exportService) firstOccurrence(entry classtime.Entry, from time.Time) (time.Time, time.Time, bool) {
	weekday, ok := parseWeekday(entry.Day)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	startClock, endClock, ok := parseClockRange(entry.Time)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.loc)
	for day.Weekday() != weekday {
		day = day.AddDate(0, 0, 1)
	}

	start := atClock(day, startClock)
	end := atClock(day, endClock)
	if endClock <= startClock {
		end = start.Add(defaultClassLength)
	}
	return start, end, true
}

// atClock 当天的墙上时间；夏令时切换日按本地时钟而非固定时长计算
func atClock(day time.Time, clock time.Duration) time.Time {
	hour := int(clock / time.Hour)
	minute := int(clock % time.Hour / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// ── 辅助函数 ──

var weekdayPrefixes = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekday(label string) (time.Weekday, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if len(l) < 3 {
		return 0, false
	}
	wd, ok := weekdayPrefixes[l[:3]]
	return wd, ok
}

var clockPattern = regexp.MustCompile(`(?i)(\d{1,2})[:.](\d{2})\s*(am|pm)?`)

// parseClockRange 返回开始与结束相对当天零点的偏移，只有开始时间时 end 为 0
func parseClockRange(label string) (time.Duration, time.Duration, bool) {
	matches := clockPattern.FindAllStringSubmatch(label, 2)
	if len(matches) == 0 {
		return 0, 0, false
	}

	start, ok := clockOffset(matches[0])
	if !ok {
		return 0, 0, false
	}
	var end time.Duration
	if len(matches) > 1 {
		if e, ok := clockOffset(matches[1]); ok {
			end = e
		}
	}
	return start, end, true
}

func clockOffset(m []string) (time.Duration, bool) {
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return 0, false
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, true
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
