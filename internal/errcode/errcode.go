package errcode

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 错误码约定：
// - 0：无错误
// - 4xxx：调用方可修正的错误（校验失败、资源缺失、未登录）
// - 5xxx：系统错误（存储不可用等）
const (
	OK                 = 0
	Validation         = 4000
	InvalidCredentials = 4001
	ResourceMissing    = 4004
	Unauthorized       = 4010
	Conflict           = 4090
	RateLimited        = 4290
	SystemError        = 5000
)

var (
	// ErrNotFound 表示引用的实体不存在。
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized 表示没有有效会话。
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials 对"用户不存在"与"密码错误"一视同仁，避免枚举账号。
	ErrInvalidCredentials = errors.New("Invalid username or password")
	// ErrConflict 表示唯一约束冲突（例如邮箱已注册）。
	ErrConflict = errors.New("conflict")
)

// ValidationError 描述边界校验失败，Fields 为字段到原因的映射。
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError 构造只有一个字段的校验错误。
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StorageError 包装底层数据访问失败，调用方无法修正。
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage 将 err 包装为 StorageError；nil 原样返回。
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Code 返回 err 对应的错误码。
func Code(err error) int {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return OK
	case errors.As(err, &validationErr):
		return Validation
	case errors.Is(err, ErrInvalidCredentials):
		return InvalidCredentials
	case errors.Is(err, ErrNotFound):
		return ResourceMissing
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized
	case errors.Is(err, ErrConflict):
		return Conflict
	default:
		return SystemError
	}
}
