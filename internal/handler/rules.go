package handler

import (
	"net/http"

	"github.com/zhiban/zhiban/internal/rules"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
)

// ValidateRulesRequest 规则校验请求
type ValidateRulesRequest struct {
	Rules model.RuleSet `json:"rules"`
}

// ValidateRulesResponse 规则校验响应
type ValidateRulesResponse struct {
	Valid        bool        `json:"valid"`
	Code         errors.Code `json:"code,omitempty"`
	Message      string      `json:"message,omitempty"`
	WeekdayTotal int         `json:"weekday_total"`
	WeekendTotal int         `json:"weekend_total"`
}

// ValidateRules 校验病区规则集
// 规则表单保存前调用，非法时返回违规原因而非HTTP错误
func (h *Handler) ValidateRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRulesRequest
	if appErr := h.decode(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	resp := ValidateRulesResponse{
		Valid:        true,
		WeekdayTotal: req.Rules.WeekdayTotal(),
		WeekendTotal: req.Rules.WeekendTotal(),
	}
	if err := req.Rules.Validate(); err != nil {
		resp.Valid = false
		resp.Code = errors.GetCode(err)
		resp.Message = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

// RuleLibrary 返回完整的规则库
func (h *Handler) RuleLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, rules.LibraryResponse{Library: rules.GetLibrary()})
}
