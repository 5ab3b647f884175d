// Package stats 提供排班统计分析功能
package stats

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/calendar"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

// CoverageMetrics 月度人力覆盖指标
type CoverageMetrics struct {
	// 整体覆盖率
	TotalSlots      int     `json:"total_slots"`      // 当月规则要求的总班位数
	FilledSlots     int     `json:"filled_slots"`     // 排班表已填充的班位数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// 按日期统计
	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	// 按班次类型统计
	ShiftTypeCoverage map[string]float64 `json:"shift_type_coverage"`

	// 人力需求满足度（按日取 min(填充/要求, 1) 的均值）
	DemandSatisfaction float64 `json:"demand_satisfaction"`

	// 人手不足的日期与班次
	Understaffed []UnderstaffedDay `json:"understaffed"`
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date         string  `json:"date"`
	IsOffDay     bool    `json:"is_off_day"`
	Required     int     `json:"required"`
	Filled       int     `json:"filled"`
	CoverageRate float64 `json:"coverage_rate"`
}

// UnderstaffedDay 人手不足的日期
type UnderstaffedDay struct {
	Date     string          `json:"date"`
	Shift    shiftmask.Shift `json:"shift"`
	Required int             `json:"required"`
	Filled   int             `json:"filled"`
	Shortage int             `json:"shortage"`
}

// DutyCell 排班表单元格：某护士某天的班次
type DutyCell struct {
	MemberID int64           `json:"member_id"`
	Day      int             `json:"day"` // 1-based
	Shift    shiftmask.Shift `json:"shift"`
}

// CoverageAnalyzer 月度覆盖率分析器
// 需求口径来自病区规则：工作日与休息日分别取各班次的最低人数
type CoverageAnalyzer struct {
	rules model.RuleSet
	month calendar.Month
}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer(rules model.RuleSet, month calendar.Month) *CoverageAnalyzer {
	return &CoverageAnalyzer{rules: rules, month: month}
}

// requiredFor 某天某班次的规则最低人数
func (c *CoverageAnalyzer) requiredFor(day calendar.Day, shift shiftmask.Shift) int {
	offDay := day.IsWeekend || day.IsHoliday
	switch shift {
	case shiftmask.ShiftDay:
		if offDay {
			return c.rules.WeekendDay.Value
		}
		return c.rules.WeekdayDay.Value
	case shiftmask.ShiftEvening:
		if offDay {
			return c.rules.WeekendEvening.Value
		}
		return c.rules.WeekdayEvening.Value
	case shiftmask.ShiftNight:
		if offDay {
			return c.rules.WeekendNight.Value
		}
		return c.rules.WeekdayNight.Value
	default:
		// 专属班不设规则人数要求
		return 0
	}
}

// Analyze 分析一个月排班表的覆盖情况
func (c *CoverageAnalyzer) Analyze(cells []DutyCell) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage:     make(map[string]DayCoverage),
		ShiftTypeCoverage: make(map[string]float64),
	}

	// 按 (天, 班次) 聚合填充数
	filled := make(map[int]map[shiftmask.Shift]int)
	for _, cell := range cells {
		if cell.Day < 1 || cell.Day > len(c.month.Days) {
			continue
		}
		if filled[cell.Day] == nil {
			filled[cell.Day] = make(map[shiftmask.Shift]int)
		}
		filled[cell.Day][cell.Shift]++
	}

	rotating := []shiftmask.Shift{shiftmask.ShiftNight, shiftmask.ShiftEvening, shiftmask.ShiftDay}
	typeRequired := make(map[string]int)
	typeFilled := make(map[string]int)
	var satisfactionSum float64

	for _, day := range c.month.Days {
		date := fmt.Sprintf("%04d-%02d-%02d", c.month.Year, c.month.Month, day.Day)
		dayRequired, dayFilled := 0, 0

		for _, shift := range rotating {
			required := c.requiredFor(day, shift)
			got := filled[day.Day][shift]
			if got > required {
				got = required // 超配不计入覆盖
			}
			dayRequired += required
			dayFilled += got
			typeRequired[string(shift)] += required
			typeFilled[string(shift)] += got

			if shortage := required - got; shortage > 0 {
				metrics.Understaffed = append(metrics.Understaffed, UnderstaffedDay{
					Date:     date,
					Shift:    shift,
					Required: required,
					Filled:   got,
					Shortage: shortage,
				})
			}
		}

		rate := 100.0
		satisfaction := 1.0
		if dayRequired > 0 {
			rate = float64(dayFilled) / float64(dayRequired) * 100
			satisfaction = float64(dayFilled) / float64(dayRequired)
		}
		satisfactionSum += satisfaction

		metrics.DailyCoverage[date] = DayCoverage{
			Date:         date,
			IsOffDay:     day.IsWeekend || day.IsHoliday,
			Required:     dayRequired,
			Filled:       dayFilled,
			CoverageRate: rate,
		}
		metrics.TotalSlots += dayRequired
		metrics.FilledSlots += dayFilled
	}

	for _, shift := range rotating {
		key := string(shift)
		if typeRequired[key] > 0 {
			metrics.ShiftTypeCoverage[key] = float64(typeFilled[key]) / float64(typeRequired[key]) * 100
		} else {
			metrics.ShiftTypeCoverage[key] = 100
		}
	}

	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.FilledSlots) / float64(metrics.TotalSlots) * 100
	} else {
		metrics.OverallCoverage = 100
	}
	if n := len(c.month.Days); n > 0 {
		metrics.DemandSatisfaction = satisfactionSum / float64(n)
	} else {
		metrics.DemandSatisfaction = 1
	}

	return metrics
}
