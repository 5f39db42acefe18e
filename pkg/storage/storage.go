package storage

import (
	"context"
	"errors"
	"io"
)

// ErrDisabled 未配置对象存储
var ErrDisabled = errors.New("object storage is not configured")

// Storage 学习资料文件的对象存储抽象
type Storage interface {
	// Upload 上传对象并返回可公开访问的 URL
	Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Disabled 未启用存储时的占位实现，所有操作返回 ErrDisabled
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.ReadSeeker, string) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Delete(context.Context, string) error {
	return ErrDisabled
}
