package util

import (
	"errors"
	"fmt"
)

var (
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrModuleNotFound   = errors.New("module not found")
	ErrItemNotFound     = errors.New("module item not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrRoleExists       = errors.New("role already exists")
	ErrMissingRole      = errors.New("missing required parameter 'role'")
	ErrNotExternalURL   = errors.New("item is not an external url")
)

// ConfigurationError 前置图配置错误：服务端故障，不是用户输入错误。
// 求值遇到悬空的前置引用时快速失败，绝不静默当作已满足
type ConfigurationError struct {
	Detail string
	ID     uint
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("module configuration error: %s (id=%d)", e.Detail, e.ID)
}

// IsConfigurationError 判定是否为配置错误
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
