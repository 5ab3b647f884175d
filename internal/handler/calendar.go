package handler

import (
	"net/http"
	"strconv"

	"github.com/zhiban/zhiban/pkg/calendar"
	"github.com/zhiban/zhiban/pkg/errors"
)

// OffDaysResponse 月度休息日响应
type OffDaysResponse struct {
	Year        int   `json:"year"`
	Month       int   `json:"month"`
	DaysInMonth int   `json:"days_in_month"`
	OffDayCount int   `json:"off_day_count"`
	WeekendDays []int `json:"weekend_days"`
	HolidayDays []int `json:"holiday_days"`
}

// OffDays 返回某月的默认休息日信息
// 节假日数据不可用时降级为仅周末口径
func (h *Handler) OffDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "无效的年份参数"))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "无效的月份参数"))
		return
	}

	m, err := h.calc.Month(r.Context(), year, month)
	if err != nil {
		respondError(w, err)
		return
	}

	weekends, _ := calendar.WeekendDays(year, month)
	holidays, _ := h.calc.HolidayDays(r.Context(), year, month)
	if holidays == nil {
		holidays = []int{}
	}

	respondJSON(w, http.StatusOK, OffDaysResponse{
		Year:        year,
		Month:       month,
		DaysInMonth: len(m.Days),
		OffDayCount: m.OffDayCount(),
		WeekendDays: weekends,
		HolidayDays: holidays,
	})
}
