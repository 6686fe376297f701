package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType int

const (
	// ErrStateNotFound 状态文件在期望的路径上不存在
	ErrStateNotFound ErrorType = iota
	// ErrStateParse 状态文件内容不是合法的 JSON
	ErrStateParse
	// ErrSchema 状态文档缺少必须的字段（resources、attributes、name 等）
	ErrSchema
	// ErrConflict 主机名与组名冲突
	ErrConflict
)

// InventoryError 统一的 inventory 构建错误类型
type InventoryError struct {
	Type      ErrorType // 错误类型
	Path      string    // 相关文件路径（如果适用）
	Workspace string    // terraform workspace（如果适用）
	Name      string    // 冲突的主机/组名（如果适用）
	Message   string    // 错误消息
	Cause     error     // 原始错误
}

func (e *InventoryError) Error() string {
	return e.Message
}

func (e *InventoryError) Unwrap() error {
	return e.Cause
}

// NewStateNotFoundError 创建状态文件缺失错误
func NewStateNotFoundError(path, workspace string) *InventoryError {
	msg := fmt.Sprintf("Could not locate the terraform state file. Expected at: %s", path)
	if workspace != "" {
		msg = fmt.Sprintf("Could not locate the terraform state file for workspace %s. Expected at: %s", workspace, path)
	}
	return &InventoryError{
		Type:      ErrStateNotFound,
		Path:      path,
		Workspace: workspace,
		Message:   msg,
	}
}

// NewStateParseError 创建状态文件解析错误
func NewStateParseError(path string, cause error) *InventoryError {
	return &InventoryError{
		Type:    ErrStateParse,
		Path:    path,
		Message: fmt.Sprintf("Failed to load the state file due to: %v", cause),
		Cause:   cause,
	}
}

// NewSchemaError 创建状态文档结构错误
func NewSchemaError(format string, args ...interface{}) *InventoryError {
	return &InventoryError{
		Type:    ErrSchema,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewConflictError 创建主机名与组名冲突错误
func NewConflictError(name string) *InventoryError {
	return &InventoryError{
		Type:    ErrConflict,
		Name:    name,
		Message: fmt.Sprintf("Found conflict between group name and host name: %s", name),
	}
}

// IsType 判断 err 是否是指定类型的 InventoryError
func IsType(err error, t ErrorType) bool {
	var invErr *InventoryError
	if stderrors.As(err, &invErr) {
		return invErr.Type == t
	}
	return false
}
