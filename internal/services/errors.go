package services

import "errors"

var (
	// ErrNotFound 行号或 userId 没有对应记录
	ErrNotFound = errors.New("记录不存在")
	// ErrRowMismatch 行号对应的 userId 与调用方预期不符（行号已因删行漂移）
	ErrRowMismatch = errors.New("行号与用户不匹配")
	// ErrInvalidRowNumber 行号没越过表头或非法
	ErrInvalidRowNumber = errors.New("无效的行号")
	// ErrInvalidCredentials 账号或密码错误
	ErrInvalidCredentials = errors.New("账号或密码错误")
	// ErrInvalidInput 请求字段校验失败
	ErrInvalidInput = errors.New("无效的请求参数")
)
