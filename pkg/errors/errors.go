// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeTimeout      Code = "TIMEOUT"
	CodeRateLimited  Code = "RATE_LIMITED"

	// 班次掩码相关
	CodeInvalidShiftCombination Code = "INVALID_SHIFT_COMBINATION"

	// 日历相关
	CodeInvalidMonth           Code = "INVALID_MONTH"
	CodeHolidayDataUnavailable Code = "HOLIDAY_DATA_UNAVAILABLE"

	// 病区规则相关
	CodeInvalidRuleValue       Code = "INVALID_RULE_VALUE"
	CodeInconsistentNightBound Code = "INCONSISTENT_NIGHT_BOUNDS"

	// 花名册相关
	CodeLastHeadNurse      Code = "LAST_HEAD_NURSE"
	CodeProvisioningFailed Code = "PROVISIONING_FAILED"

	// 数据相关
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeValidationFail Code = "VALIDATION_FAILED"
)

// AppError 应用错误
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus 错误码转HTTP状态码
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail, CodeInvalidShiftCombination,
		CodeInvalidMonth, CodeInvalidRuleValue, CodeInconsistentNightBound:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeLastHeadNurse:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeProvisioningFailed:
		return http.StatusBadGateway
	case CodeHolidayDataUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus 获取HTTP状态码
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsRetryable 检查错误是否可重试
// 外部IO失败（如增援调用）可重试，纯计算的契约违规不可重试
func IsRetryable(err error) bool {
	switch GetCode(err) {
	case CodeProvisioningFailed, CodeTimeout, CodeHolidayDataUnavailable:
		return true
	default:
		return false
	}
}

// 预定义错误
var (
	ErrNotFound     = New(CodeNotFound, "资源不存在")
	ErrInvalidInput = New(CodeInvalidInput, "输入参数无效")
	ErrUnauthorized = New(CodeUnauthorized, "未授权访问")
	ErrForbidden    = New(CodeForbidden, "禁止访问")
	ErrInternal     = New(CodeInternal, "内部错误")
	ErrTimeout      = New(CodeTimeout, "操作超时")
)

// InvalidShiftCombination 创建班次组合无效错误
func InvalidShiftCombination(details string) *AppError {
	return New(CodeInvalidShiftCombination, "M班为专属班次，不可与轮转班组合").WithDetails(details)
}

// InvalidMonth 创建月份无效错误
func InvalidMonth(month int) *AppError {
	return New(CodeInvalidMonth, fmt.Sprintf("月份 %d 无效，应在 1-12 之间", month))
}

// InvalidRuleValue 创建规则值无效错误
func InvalidRuleValue(field, reason string) *AppError {
	return New(CodeInvalidRuleValue, fmt.Sprintf("规则字段 '%s' 无效: %s", field, reason))
}

// InconsistentNightBounds 创建夜班上下限矛盾错误
func InconsistentNightBounds(min, max int) *AppError {
	return New(CodeInconsistentNightBound,
		fmt.Sprintf("最小连续夜班数 %d 不能大于最大连续夜班数 %d", min, max))
}

// LastHeadNurse 创建最后一名护士长错误
func LastHeadNurse() *AppError {
	return New(CodeLastHeadNurse, "病区必须至少保留一名护士长")
}

// ProvisioningFailed 创建临时护士增援失败错误
func ProvisioningFailed(cause error) *AppError {
	return Wrap(cause, CodeProvisioningFailed, "临时护士添加失败")
}

// HolidayDataUnavailable 创建节假日数据不可用错误
func HolidayDataUnavailable(year, month int, cause error) *AppError {
	return Wrap(cause, CodeHolidayDataUnavailable,
		fmt.Sprintf("%d年%d月节假日数据不可用", year, month))
}

// ValidationErrors 验证错误集合
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError 单个验证错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "验证失败"
	}
	return fmt.Sprintf("验证失败: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add 添加验证错误
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors 检查是否有错误
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError 转换为 AppError
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidationFail, "验证失败")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
