package model

import (
	"testing"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

func TestRuleSet_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*RuleSet)
		wantCode errors.Code
	}{
		{"默认规则合法", func(r *RuleSet) {}, ""},
		{"负的最低人数", func(r *RuleSet) { r.WeekdayDay.Value = -1 }, errors.CodeInvalidRuleValue},
		{"连班下限为0", func(r *RuleSet) { r.MaxConsecutiveShift.Value = 0 }, errors.CodeInvalidRuleValue},
		{"优先级越界", func(r *RuleSet) { r.WeekendNight.Priority = 5 }, errors.CodeInvalidRuleValue},
		{"夜班上下限矛盾", func(r *RuleSet) {
			r.MinConsecutiveNight.Value = 4
			r.MaxConsecutiveNight.Value = 3
		}, errors.CodeInconsistentNightBound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRuleSet()
			tt.mutate(&rules)
			err := rules.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("期望合法, 实际错误: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("期望错误码 %s, 实际: %v", tt.wantCode, err)
			}
		})
	}
}

func TestRuleSet_Totals(t *testing.T) {
	rules := RuleSet{
		WeekdayDay:     RuleValue{Value: 3},
		WeekdayEvening: RuleValue{Value: 3},
		WeekdayNight:   RuleValue{Value: 2},
		WeekendDay:     RuleValue{Value: 2},
		WeekendEvening: RuleValue{Value: 2},
		WeekendNight:   RuleValue{Value: 1},
	}
	if got := rules.WeekdayTotal(); got != 8 {
		t.Errorf("WeekdayTotal() = %d, 期望 8", got)
	}
	if got := rules.WeekendTotal(); got != 5 {
		t.Errorf("WeekendTotal() = %d, 期望 5", got)
	}
}

func TestNewShortfall(t *testing.T) {
	s := NewShortfall(8, 5)
	if s.AdditionalNeeded != 3 {
		t.Errorf("AdditionalNeeded = %d, 期望 3", s.AdditionalNeeded)
	}
	if s.IsSufficient() {
		t.Error("缺口为3时不应判定为充足")
	}

	// 人数富余时缺口为0，不为负
	s = NewShortfall(5, 9)
	if s.AdditionalNeeded != 0 {
		t.Errorf("富余时 AdditionalNeeded = %d, 期望 0", s.AdditionalNeeded)
	}
	if !s.IsSufficient() {
		t.Error("人数富余时应判定为充足")
	}
}

func TestNewTemporaryNurse(t *testing.T) {
	n := NewTemporaryNurse(1001, [16]byte{}, "临时1")
	if !n.IsTemporary {
		t.Error("临时护士应标记 IsTemporary")
	}
	if n.ShiftMask != shiftmask.All {
		t.Errorf("临时护士默认掩码应为 All, 实际: %d", n.ShiftMask)
	}
	if n.IsHeadNurse() {
		t.Error("临时护士不应为护士长")
	}
}

func TestNurse_CanWork(t *testing.T) {
	mid := Nurse{ShiftMask: shiftmask.BitMid}
	if !mid.IsMidDedicated() {
		t.Error("M掩码护士应为专属班")
	}
	if mid.CanWork(shiftmask.ShiftDay) {
		t.Error("专属班护士不可排白班")
	}
	if !mid.CanWork(shiftmask.ShiftMid) {
		t.Error("专属班护士应可排M班")
	}
}
