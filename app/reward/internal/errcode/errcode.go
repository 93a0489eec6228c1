// Package errcode 奖励服务的业务错误分类
package errcode

import "github.com/cockroachdb/errors"

var (
	// ErrDataNotFound 卡池/商品/邮件等静态或账号数据不存在
	ErrDataNotFound = errors.New("data not found")
	// ErrInsufficientResources 扣除资源不足
	ErrInsufficientResources = errors.New("insufficient resources")
	// ErrAuthenticationFailed 会话无效或已过期
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrInvariantViolation 服务端数据缺陷, 如抽到的角色不在静态表中
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrInvalidArgument 请求参数非法
	ErrInvalidArgument = errors.New("invalid argument")
)

var kinds = []error{
	ErrDataNotFound,
	ErrInsufficientResources,
	ErrAuthenticationFailed,
	ErrInvariantViolation,
	ErrInvalidArgument,
}

// DataNotFound 构造 ErrDataNotFound
func DataNotFound(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrDataNotFound)
}

// Insufficient 构造 ErrInsufficientResources
func Insufficient(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInsufficientResources)
}

// AuthFailed 包装会话错误
func AuthFailed(err error) error {
	if err == nil {
		err = errors.New("no session")
	}
	return errors.Mark(errors.Wrap(err, "authentication failed"), ErrAuthenticationFailed)
}

// Invariant 构造 ErrInvariantViolation
func Invariant(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvariantViolation)
}

// InvalidArgument 构造 ErrInvalidArgument
func InvalidArgument(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}

// Is 是否属于指定分类
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}

// Kind 返回最外层标记的分类, 未分类返回 nil
func Kind(err error) error {
	for c := err; c != nil; c = errors.UnwrapOnce(c) {
		next := errors.UnwrapOnce(c)
		for _, kind := range kinds {
			// 本层新增的标记
			if errors.Is(c, kind) && (next == nil || !errors.Is(next, kind)) {
				return kind
			}
		}
	}
	return nil
}
