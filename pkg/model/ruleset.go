// Package model 定义人员充足性引擎的核心数据模型
package model

import (
	"github.com/zhiban/zhiban/pkg/errors"
)

// RuleValue 带优先级的规则值
type RuleValue struct {
	Value    int      `json:"value" db:"value"`
	Priority Priority `json:"priority" db:"priority"`
}

// RuleSet 病区排班规则集，由护士长维护
type RuleSet struct {
	// 工作日各班次最低人数
	WeekdayDay     RuleValue `json:"wday_d"`
	WeekdayEvening RuleValue `json:"wday_e"`
	WeekdayNight   RuleValue `json:"wday_n"`

	// 周末各班次最低人数
	WeekendDay     RuleValue `json:"wend_d"`
	WeekendEvening RuleValue `json:"wend_e"`
	WeekendNight   RuleValue `json:"wend_n"`

	// 连班限制
	MaxConsecutiveShift RuleValue `json:"max_shift"` // 最大连续上班天数
	MaxConsecutiveNight RuleValue `json:"max_night"` // 最大连续夜班数
	MinConsecutiveNight RuleValue `json:"min_night"` // 最小连续夜班数
}

// DefaultRuleSet 返回新建病区的默认规则
func DefaultRuleSet() RuleSet {
	return RuleSet{
		WeekdayDay:          RuleValue{Value: 3, Priority: PriorityHigh},
		WeekdayEvening:      RuleValue{Value: 2, Priority: PriorityHigh},
		WeekdayNight:        RuleValue{Value: 2, Priority: PriorityHigh},
		WeekendDay:          RuleValue{Value: 2, Priority: PriorityMedium},
		WeekendEvening:      RuleValue{Value: 2, Priority: PriorityMedium},
		WeekendNight:        RuleValue{Value: 2, Priority: PriorityMedium},
		MaxConsecutiveShift: RuleValue{Value: 5, Priority: PriorityHigh},
		MaxConsecutiveNight: RuleValue{Value: 3, Priority: PriorityHigh},
		MinConsecutiveNight: RuleValue{Value: 2, Priority: PriorityLow},
	}
}

// Validate 校验规则集
// 所有人数下限必须 >=0，最大连班 >=1，夜班上下限不得矛盾
func (r *RuleSet) Validate() error {
	counts := map[string]RuleValue{
		"wday_d": r.WeekdayDay,
		"wday_e": r.WeekdayEvening,
		"wday_n": r.WeekdayNight,
		"wend_d": r.WeekendDay,
		"wend_e": r.WeekendEvening,
		"wend_n": r.WeekendNight,
	}
	for field, rv := range counts {
		if rv.Value < 0 {
			return errors.InvalidRuleValue(field, "最低人数不能为负")
		}
		if !rv.Priority.Valid() {
			return errors.InvalidRuleValue(field, "优先级必须在 1-3 之间")
		}
	}

	if r.MaxConsecutiveShift.Value < 1 {
		return errors.InvalidRuleValue("max_shift", "最大连续上班天数必须 >= 1")
	}
	if r.MaxConsecutiveNight.Value < 0 {
		return errors.InvalidRuleValue("max_night", "最大连续夜班数不能为负")
	}
	if r.MinConsecutiveNight.Value < 0 {
		return errors.InvalidRuleValue("min_night", "最小连续夜班数不能为负")
	}
	if r.MinConsecutiveNight.Value > r.MaxConsecutiveNight.Value {
		return errors.InconsistentNightBounds(r.MinConsecutiveNight.Value, r.MaxConsecutiveNight.Value)
	}

	return nil
}

// WeekdayTotal 工作日三班最低人数合计
func (r *RuleSet) WeekdayTotal() int {
	return r.WeekdayDay.Value + r.WeekdayEvening.Value + r.WeekdayNight.Value
}

// WeekendTotal 周末三班最低人数合计
func (r *RuleSet) WeekendTotal() int {
	return r.WeekendDay.Value + r.WeekendEvening.Value + r.WeekendNight.Value
}
