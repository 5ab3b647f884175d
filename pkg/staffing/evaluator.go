// Package staffing 提供人员充足性评估
package staffing

import (
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

// Period 评估时段类型，工作日与周末的最低人数要求不同
type Period string

const (
	PeriodWeekday Period = "weekday"
	PeriodWeekend Period = "weekend"
)

// CountEligible 统计花名册中可排某班次的护士数
// 专属班(M)护士只计入 M 班，不计入 D/E/N
func CountEligible(roster []model.Nurse, shift shiftmask.Shift) int {
	count := 0
	for i := range roster {
		n := &roster[i]
		if shift != shiftmask.ShiftMid && n.IsMidDedicated() {
			continue
		}
		if n.CanWork(shift) {
			count++
		}
	}
	return count
}

// CountRotating 统计可参与 D/E/N 轮转的护士数（排除专属班）
func CountRotating(roster []model.Nurse) int {
	count := 0
	for i := range roster {
		if !roster[i].IsMidDedicated() {
			count++
		}
	}
	return count
}

// CountMidDedicated 统计专属班护士数
func CountMidDedicated(roster []model.Nurse) int {
	count := 0
	for i := range roster {
		if roster[i].IsMidDedicated() {
			count++
		}
	}
	return count
}

// Evaluate 评估花名册是否满足规则要求的最低轮转人数
// 以工作日最低人数作为保守下限，纯函数：相同输入恒得相同缺口
func Evaluate(roster []model.Nurse, rules model.RuleSet) model.StaffingShortfall {
	needed := rules.WeekdayTotal()
	current := CountRotating(roster)
	return model.NewShortfall(needed, current)
}

// EvaluatePeriod 按时段类型评估缺口
func EvaluatePeriod(roster []model.Nurse, rules model.RuleSet, period Period) model.StaffingShortfall {
	var needed int
	switch period {
	case PeriodWeekend:
		needed = rules.WeekendTotal()
	default:
		needed = rules.WeekdayTotal()
	}
	return model.NewShortfall(needed, CountRotating(roster))
}
