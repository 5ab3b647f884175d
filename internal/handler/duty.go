package handler

import (
	"net/http"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/validator"
)

// CheckDutyRequest 排班表校验请求
type CheckDutyRequest struct {
	Rules model.RuleSet           `json:"rules"`
	Table []validator.NurseDuties `json:"table" validate:"required,dive"`
}

// CheckDutyResponse 排班表校验响应
type CheckDutyResponse struct {
	Valid      bool                  `json:"valid"`
	Violations []validator.Violation `json:"violations"`
}

// CheckDuty 按病区规则检测排班表违规
func (h *Handler) CheckDuty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CheckDutyRequest
	if appErr := h.decode(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if err := req.Rules.Validate(); err != nil {
		respondError(w, err)
		return
	}

	violations := validator.NewDetector(req.Rules).DetectAll(req.Table)
	if violations == nil {
		violations = []validator.Violation{}
	}
	respondJSON(w, http.StatusOK, CheckDutyResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}
