package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/service"
	"nesttask/backend/pkg/response"
)

// SectionHandler 分区模块 HTTP 处理器
type SectionHandler struct {
	sectionSvc service.SectionService
}

// NewSectionHandler 创建 SectionHandler
func NewSectionHandler(sectionSvc service.SectionService) *SectionHandler {
	return &SectionHandler{sectionSvc: sectionSvc}
}

// ListSections 分区列表
// GET /api/v1/sections
func (h *SectionHandler) ListSections(c *gin.Context) {
	var req dto.SectionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	sections, err := h.sectionSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sections})
}

// GetSection 分区详情
// GET /api/v1/sections/:id
func (h *SectionHandler) GetSection(c *gin.Context) {
	section, err := h.sectionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, section)
}

// CreateSection 创建分区
// POST /api/v1/sections
func (h *SectionHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	section, err := h.sectionSvc.Create(c.Request.Context(), &req, authContext(c).UserID)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.Created(c, section)
}

// UpdateSection 更新分区
// PUT /api/v1/sections/:id
func (h *SectionHandler) UpdateSection(c *gin.Context) {
	var req dto.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	section, err := h.sectionSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, section)
}

// DeleteSection 删除分区
// DELETE /api/v1/sections/:id
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	if err := h.sectionSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SectionHandler) handleSectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 21001, "section not found")
	case errors.Is(err, service.ErrSectionNameExists):
		response.Conflict(c, 21002, "section name already exists")
	case errors.Is(err, service.ErrSectionHasMembers):
		response.Conflict(c, 21003, "section still has members")
	default:
		response.InternalError(c)
	}
}
