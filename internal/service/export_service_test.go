package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"nesttask/backend/internal/model"
	"nesttask/backend/pkg/classtime"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *testRepos) {
	repo, mocks := newTestRepos()
	return NewExportService(repo, time.UTC, zap.NewNop()), mocks
}

// ── ExportCourses 测试 ──

func TestExportService_ExportCourses_NoCourses(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportCourses(context.Background(), "")
	if !errors.Is(err, ErrExportNoCourses) {
		t.Errorf("期望 ErrExportNoCourses，实际: %v", err)
	}
}

func TestExportService_ExportCourses_ReimportRoundTrip(t *testing.T) {
	svc, mocks := setupTestExportService()
	mocks.course.courses["c-1"] = &model.Course{
		ID: "c-1", Name: "Intro", Code: "CSE101", Teacher: "Dr. X",
		ClassTime: "Sunday at 08:30 in 601, Tuesday at 10:00", Credit: 3, Section: strPtr("63_A"),
	}
	mocks.course.courses["c-2"] = &model.Course{ID: "c-2", Name: "Other", Code: "EEE101", Section: strPtr("63_B")}

	buf, filename, err := svc.ExportCourses(context.Background(), "63_A")
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if filename != "courses_63_A.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	importer, _ := setupTestImportService()
	candidates, err := importer.ParseCourseFile(buf)
	if err != nil {
		t.Fatalf("导出文件应可再次导入: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("期望只导出 63_A 的 1 门课程，实际=%d", len(candidates))
	}
	c := candidates[0]
	if c.Code != "CSE101" || c.Teacher != "Dr. X" || c.Credit != 3 || c.Section != "63_A" {
		t.Errorf("往返字段不符: %+v", c)
	}
	if len(c.ClassTimes) != 2 || c.ClassTimes[0].Classroom != "601" {
		t.Errorf("上课时间往返不符: %+v", c.ClassTimes)
	}
}

// ── CourseCalendar 测试 ──

func TestExportService_CourseCalendar_NotFound(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.CourseCalendar(context.Background(), "missing", time.Now(), 0)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestExportService_CourseCalendar_NoRecognisableTimes(t *testing.T) {
	svc, mocks := setupTestExportService()
	mocks.course.courses["c-1"] = &model.Course{ID: "c-1", Code: "CSE101", ClassTime: "Someday at noon"}

	_, _, err := svc.CourseCalendar(context.Background(), "c-1", time.Now(), 0)
	if !errors.Is(err, ErrCalendarNoSchedule) {
		t.Errorf("期望 ErrCalendarNoSchedule，实际: %v", err)
	}
}

func TestExportService_CourseCalendar_WeeklyEvents(t *testing.T) {
	svc, mocks := setupTestExportService()
	mocks.course.courses["c-1"] = &model.Course{
		ID: "c-1", Name: "Intro", Code: "CSE101", Teacher: "Dr. X",
		ClassTime: "Sunday at 8:30 AM - 10:00 AM in 601, Tuesday at 14:00, Blursday at 10:00",
	}
	// 2026-03-04 为周三
	from := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	buf, filename, err := svc.CourseCalendar(context.Background(), "c-1", from, 12)
	if err != nil {
		t.Fatalf("导出日历失败: %v", err)
	}
	if filename != "CSE101.ics" {
		t.Errorf("文件名不符: %s", filename)
	}

	raw := buf.String()
	if strings.Count(raw, "RRULE:FREQ=WEEKLY;COUNT=12") != 2 {
		t.Errorf("期望两个按周重复 12 次的事件:\n%s", raw)
	}
	if !strings.Contains(raw, "DTSTART:20260308T083000Z") {
		t.Errorf("周日课程应从 2026-03-08 08:30 开始:\n%s", raw)
	}
	if !strings.Contains(raw, "DTEND:20260308T100000Z") {
		t.Errorf("应使用时间段中的结束时间:\n%s", raw)
	}
	if !strings.Contains(raw, "DTSTART:20260310T140000Z") || !strings.Contains(raw, "DTEND:20260310T153000Z") {
		t.Errorf("只有开始时间时应使用默认课时:\n%s", raw)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("生成的日历无法解析: %v", err)
	}
	if n := len(cal.Events()); n != 2 {
		t.Errorf("期望 2 个事件（无法识别的星期被跳过），实际=%d", n)
	}
}

func TestFirstOccurrence_DaylightSavingDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("时区数据不可用: %v", err)
	}
	svc := &exportService{loc: loc}

	// 2026-03-08 为周日，当天凌晨 2 点进入夏令时
	from := time.Date(2026, 3, 6, 0, 0, 0, 0, loc)
	start, end, ok := svc.firstOccurrence(classtime.Entry{Day: "Sunday", Time: "8:30 AM - 10:00 AM"}, from)
	if !ok {
		t.Fatal("期望识别上课时间")
	}
	if got := start.Format("2006-01-02 15:04 MST"); got != "2026-03-08 08:30 EDT" {
		t.Errorf("开始时间应为本地 08:30，实际=%s", got)
	}
	if got := end.Format("15:04"); got != "10:00" {
		t.Errorf("结束时间应为本地 10:00，实际=%s", got)
	}
}

func TestParseClockRange(t *testing.T) {
	cases := []struct {
		in         string
		start, end time.Duration
		ok         bool
	}{
		{"10:00", 10 * time.Hour, 0, true},
		{"8:30 AM - 10:00 AM", 8*time.Hour + 30*time.Minute, 10 * time.Hour, true},
		{"1.15 pm-2.45 pm", 13*time.Hour + 15*time.Minute, 14*time.Hour + 45*time.Minute, true},
		{"12:00 AM", 0, 0, true},
		{"noon", 0, 0, false},
		{"25:00", 0, 0, false},
	}
	for _, c := range cases {
		start, end, ok := parseClockRange(c.in)
		if ok != c.ok || start != c.start || end != c.end {
			t.Errorf("parseClockRange(%q) = %v,%v,%v，期望 %v,%v,%v", c.in, start, end, ok, c.start, c.end, c.ok)
		}
	}
}
