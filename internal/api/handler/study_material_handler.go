package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/service"
	"nesttask/backend/pkg/response"
)

// StudyMaterialHandler 学习资料模块 HTTP 处理器
type StudyMaterialHandler struct {
	materialSvc service.StudyMaterialService
}

// NewStudyMaterialHandler 创建 StudyMaterialHandler
func NewStudyMaterialHandler(materialSvc service.StudyMaterialService) *StudyMaterialHandler {
	return &StudyMaterialHandler{materialSvc: materialSvc}
}

// ListMaterials 课程资料列表
// GET /api/v1/materials?course_id=&category=
func (h *StudyMaterialHandler) ListMaterials(c *gin.Context) {
	var req dto.StudyMaterialListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	materials, err := h.materialSvc.ListByCourse(c.Request.Context(), &req)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, gin.H{"list": materials})
}

// GetMaterial 资料详情
// GET /api/v1/materials/:id
func (h *StudyMaterialHandler) GetMaterial(c *gin.Context) {
	material, err := h.materialSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, material)
}

// CreateMaterial 创建资料
// POST /api/v1/materials
func (h *StudyMaterialHandler) CreateMaterial(c *gin.Context) {
	var req dto.CreateStudyMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	material, err := h.materialSvc.Create(c.Request.Context(), authContext(c), &req)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.Created(c, material)
}

// UpdateMaterial 更新资料
// PUT /api/v1/materials/:id
func (h *StudyMaterialHandler) UpdateMaterial(c *gin.Context) {
	var req dto.UpdateStudyMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	material, err := h.materialSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, material)
}

// DeleteMaterial 删除资料
// DELETE /api/v1/materials/:id
func (h *StudyMaterialHandler) DeleteMaterial(c *gin.Context) {
	if err := h.materialSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.OK(c, nil)
}

// UploadFile 上传资料文件，表单字段 file
// POST /api/v1/materials/upload
func (h *StudyMaterialHandler) UploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeBadRequest, "file is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, response.CodeBadRequest, "cannot read uploaded file")
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.materialSvc.Upload(c.Request.Context(), fh.Filename, contentType, fh.Size, f)
	if err != nil {
		h.handleMaterialError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *StudyMaterialHandler) handleMaterialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudyMaterialNotFound):
		response.NotFound(c, 24001, "study material not found")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 23001, "course not found")
	case errors.Is(err, service.ErrMaterialFilesMismatch):
		response.BadRequest(c, 24002, "file urls and original file names must have the same length")
	case errors.Is(err, service.ErrEmptyFile):
		response.BadRequest(c, 24003, "file is empty")
	case errors.Is(err, service.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 24004, "file exceeds the upload size limit")
	case errors.Is(err, service.ErrStorageDisabled):
		response.Error(c, http.StatusServiceUnavailable, 24005, "file upload is not enabled")
	default:
		response.InternalError(c)
	}
}
