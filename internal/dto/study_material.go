package dto

// ── 学习资料模块 DTO ──

// MaterialFile 资料中的单个文件
type MaterialFile struct {
	URL              string `json:"url"                binding:"required,url"`
	OriginalFileName string `json:"original_file_name" binding:"required,max=255"`
}

// CreateStudyMaterialRequest 创建学习资料请求
type CreateStudyMaterialRequest struct {
	Title       string         `json:"title"       binding:"required,max=200"`
	Description string         `json:"description" binding:"omitempty,max=2000"`
	CourseID    string         `json:"course_id"   binding:"required,uuid"`
	Category    string         `json:"category"    binding:"required,max=50"`
	Files       []MaterialFile `json:"files"       binding:"omitempty,dive"`
}

// UpdateStudyMaterialRequest 更新学习资料请求；Files 非 nil 时整体替换
type UpdateStudyMaterialRequest struct {
	Title       *string         `json:"title"       binding:"omitempty,max=200"`
	Description *string         `json:"description" binding:"omitempty,max=2000"`
	Category    *string         `json:"category"    binding:"omitempty,max=50"`
	Files       *[]MaterialFile `json:"files"`
}

// StudyMaterialListRequest 资料列表查询参数
type StudyMaterialListRequest struct {
	CourseID string `form:"course_id" binding:"required,uuid"`
	Category string `form:"category"  binding:"omitempty,max=50"`
}

// StudyMaterialResponse 学习资料响应
type StudyMaterialResponse struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	CourseID          string   `json:"course_id"`
	Category          string   `json:"category"`
	FileURLs          []string `json:"file_urls"`
	OriginalFileNames []string `json:"original_file_names"`
	CreatedAt         string   `json:"created_at"`
	CreatedBy         string   `json:"created_by,omitempty"`
}

// UploadFileResponse 文件上传结果，可直接作为 MaterialFile 提交
type UploadFileResponse struct {
	URL              string `json:"url"`
	OriginalFileName string `json:"original_file_name"`
}
