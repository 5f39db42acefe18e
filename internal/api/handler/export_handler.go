package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nesttask/backend/internal/service"
	"nesttask/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCourses 导出课程列表为 Excel，格式与导入模板一致
// GET /api/v1/courses/export?section=
func (h *ExportHandler) ExportCourses(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportCourses(c.Request.Context(), c.Query("section"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// CourseCalendar 导出课程上课时间为 iCalendar
// GET /api/v1/courses/:id/calendar?from=2026-01-04&weeks=16
func (h *ExportHandler) CourseCalendar(c *gin.Context) {
	from := time.Now()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, response.CodeBadRequest, "from must be a date in YYYY-MM-DD format")
			return
		}
		from = parsed
	}

	weeks := 0
	if raw := c.Query("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 52 {
			response.BadRequest(c, response.CodeBadRequest, "weeks must be between 1 and 52")
			return
		}
		weeks = n
	}

	buf, filename, err := h.exportSvc.CourseCalendar(c.Request.Context(), c.Param("id"), from, weeks)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, filename, contentTypeICS, buf.Bytes())
}

func writeAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoCourses):
		response.NotFound(c, 26001, "no courses to export")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 23001, "course not found")
	case errors.Is(err, service.ErrCalendarNoSchedule):
		response.BadRequest(c, 26002, "course has no recognisable class times")
	default:
		response.InternalError(c)
	}
}
