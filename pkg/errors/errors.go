package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRowNotAffected 写操作未命中任何记录（删除/更新目标不存在）
var ErrRowNotAffected = errors.New("no rows affected")

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation 判断是否为唯一约束冲突
func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// IsForeignKeyViolation 判断是否为外键约束冲突
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// IsCheckViolation 判断是否为 CHECK 约束冲突
func IsCheckViolation(err error) bool {
	return pgCode(err) == pgCheckViolation
}

// ConstraintName 返回触发错误的约束名，非 PG 错误返回空串
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// StoreMessage 提取存储层可读的错误信息
// PG 错误只返回 Message 部分，避免把 SQLSTATE 等细节暴露给前端
func StoreMessage(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	return err.Error()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
