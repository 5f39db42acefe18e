package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/service"
	"nesttask/backend/pkg/response"
)

// ImportHandler 课程批量导入 HTTP 处理器
//
// 两个入口最终都调用 BulkImportCourses，响应体都是 CourseImportReport。
// 行级失败不影响 HTTP 状态码，调用方应检查 report.errors。
type ImportHandler struct {
	importSvc service.ImportService
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

// ImportCourses JSON 批量导入
// POST /api/v1/courses/import
func (h *ImportHandler) ImportCourses(c *gin.Context) {
	var req dto.ImportCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	report := h.importSvc.BulkImportCourses(c.Request.Context(), authContext(c), req.Courses)
	response.OK(c, report)
}

// ImportCourseFile Excel 文件批量导入，表单字段 file
// POST /api/v1/courses/import/file
func (h *ImportHandler) ImportCourseFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeBadRequest, "file is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.BadRequest(c, 25005, "only .xlsx files are supported")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, response.CodeBadRequest, "cannot read uploaded file")
		return
	}
	defer f.Close()

	candidates, err := h.importSvc.ParseCourseFile(f)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	report := h.importSvc.BulkImportCourses(c.Request.Context(), authContext(c), candidates)
	response.OK(c, report)
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 25001, "import file contains no data rows")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 25002, "import file must have name and code columns")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.Error(c, http.StatusRequestEntityTooLarge, 25003, "import file exceeds the row limit")
	default:
		// excelize 无法打开的文件
		response.ErrorWithDetails(c, http.StatusBadRequest, 25005, "cannot parse import file", err.Error())
	}
}
