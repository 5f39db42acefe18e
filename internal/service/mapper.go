package service

import (
	"time"

	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/pkg/classtime"
)

// ── 实体映射：model（存储行） → dto（应用实体） ──

const timeLayout = time.RFC3339

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optionalString 空串映射为 nil，用于可空列
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toCourseResponse 读路径使用宽松解码，历史数据中的坏片段被跳过而不是让整个请求失败
func toCourseResponse(c *model.Course, materialCount int64) dto.CourseResponse {
	return dto.CourseResponse{
		ID:            c.ID,
		Name:          c.Name,
		Code:          c.Code,
		Teacher:       c.Teacher,
		TeacherID:     c.TeacherID,
		ClassTimes:    classtime.DecodeLenient(c.ClassTime),
		TelegramGroup: c.TelegramGroup,
		BLCLink:       c.BLCLink,
		BLCEnrollKey:  c.BLCEnrollKey,
		Credit:        c.Credit,
		Section:       derefString(c.Section),
		MaterialCount: materialCount,
		CreatedAt:     c.CreatedAt.Format(timeLayout),
		CreatedBy:     derefString(c.CreatedBy),
	}
}

func toTeacherResponse(t *model.Teacher) dto.TeacherResponse {
	return dto.TeacherResponse{
		ID:         t.ID,
		Name:       t.Name,
		Phone:      t.Phone,
		Email:      t.Email,
		Department: t.Department,
		CreatedAt:  t.CreatedAt.Format(timeLayout),
	}
}

func toStudyMaterialResponse(m *model.StudyMaterial) dto.StudyMaterialResponse {
	urls := []string(m.FileURLs)
	if urls == nil {
		urls = []string{}
	}
	names := []string(m.OriginalFileNames)
	if names == nil {
		names = []string{}
	}
	return dto.StudyMaterialResponse{
		ID:                m.ID,
		Title:             m.Title,
		Description:       m.Description,
		CourseID:          m.CourseID,
		Category:          m.Category,
		FileURLs:          urls,
		OriginalFileNames: names,
		CreatedAt:         m.CreatedAt.Format(timeLayout),
		CreatedBy:         derefString(m.CreatedBy),
	}
}

// splitMaterialFiles 将文件列表拆为平行的 URL / 原始文件名数组
func splitMaterialFiles(files []dto.MaterialFile) (urls, names []string) {
	urls = make([]string, 0, len(files))
	names = make([]string, 0, len(files))
	for _, f := range files {
		urls = append(urls, f.URL)
		names = append(names, f.OriginalFileName)
	}
	return urls, names
}

func toUserResponse(u *model.User) dto.UserResponse {
	var section *dto.SectionResponse
	if u.Section != nil {
		section = &dto.SectionResponse{ID: u.Section.ID, Name: u.Section.Name}
	}
	return dto.UserResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		Section: section,
	}
}

func toSectionDetailResponse(s *model.Section, memberCount int64) dto.SectionDetailResponse {
	return dto.SectionDetailResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		IsActive:    s.IsActive,
		MemberCount: memberCount,
		CreatedAt:   s.CreatedAt.Format(timeLayout),
		UpdatedAt:   s.UpdatedAt.Format(timeLayout),
	}
}
