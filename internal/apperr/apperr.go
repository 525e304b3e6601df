package apperr

import (
	"errors"
	"fmt"
)

// 错误分类：NotFound / InvalidArgument 可恢复，其余视为 Internal。
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFoundf 包装 ErrNotFound 并附带上下文描述。
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidArgumentf 包装 ErrInvalidArgument 并附带上下文描述。
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IsNotFound 判断错误链中是否为 NotFound。
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidArgument 判断错误链中是否为 InvalidArgument。
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }
