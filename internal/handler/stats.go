package handler

import (
	"net/http"

	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/stats"
)

// CoverageRequest 月度覆盖分析请求
type CoverageRequest struct {
	WardID string           `json:"ward_id" validate:"required"`
	Year   int              `json:"year" validate:"required"`
	Month  int              `json:"month" validate:"required"`
	Rules  model.RuleSet    `json:"rules"`
	Cells  []stats.DutyCell `json:"cells"`
}

// Coverage 分析某月排班表的人力覆盖情况
func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CoverageRequest
	if appErr := h.decode(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if err := req.Rules.Validate(); err != nil {
		respondError(w, err)
		return
	}

	month, err := h.calc.Month(r.Context(), req.Year, req.Month)
	if err != nil {
		respondError(w, err)
		return
	}

	result := stats.NewCoverageAnalyzer(req.Rules, month).Analyze(req.Cells)
	metrics.SetCoverageRate(req.WardID, result.OverallCoverage)
	respondJSON(w, http.StatusOK, result)
}
