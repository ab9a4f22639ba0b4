package domain

import "errors"

// 业务错误分类。service 层统一用 fmt.Errorf("%w: ...") 包装，
// HTTP 层用 errors.Is 映射到状态码。
var (
	// ErrForbidden 角色或公司归属不允许该操作
	ErrForbidden = errors.New("forbidden")
	// ErrBadRequest 调用方缺少必需属性或输入不合法
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound 引用的字段或用户不存在
	ErrNotFound = errors.New("not found")
)
