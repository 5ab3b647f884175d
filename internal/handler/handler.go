// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/calendar"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/readiness"
)

// Handler HTTP处理器
type Handler struct {
	validate   *validator.Validate
	translator ut.Translator
	calc       *calendar.Calculator

	// sinkFor 按病区构造临时护士增援服务
	// 未设置时使用进程内花名册追加（无持久化部署）
	sinkFor func(wardID uuid.UUID) readiness.ProvisioningSink
}

// UseProvisioner 设置持久化的增援服务工厂
func (h *Handler) UseProvisioner(sinkFor func(wardID uuid.UUID) readiness.ProvisioningSink) {
	h.sinkFor = sinkFor
}

// New 创建处理器
func New(calc *calendar.Calculator) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		translator: trans,
		calc:       calc,
	}, nil
}

// Register 注册路由
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/staffing/evaluate", h.EvaluateStaffing)
	mux.HandleFunc("/api/v1/readiness/decide", h.DecideReadiness)
	mux.HandleFunc("/api/v1/roster/apply", h.ApplyRoster)
	mux.HandleFunc("/api/v1/rules/validate", h.ValidateRules)
	mux.HandleFunc("/api/v1/rules/library", h.RuleLibrary)
	mux.HandleFunc("/api/v1/calendar/off-days", h.OffDays)
	mux.HandleFunc("/api/v1/duty/check", h.CheckDuty)
	mux.HandleFunc("/api/v1/stats/coverage", h.Coverage)
}

// decode 解析并校验请求体
func (h *Handler) decode(r *http.Request, v interface{}) *errors.AppError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}
	if err := h.validate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return errors.New(errors.CodeValidationFail, verrs[0].Translate(h.translator))
		}
		return errors.Wrap(err, errors.CodeValidationFail, "请求校验失败")
	}
	return nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.CodeInternal, "服务器内部错误")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
	})
}
