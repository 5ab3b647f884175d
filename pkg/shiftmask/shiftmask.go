// Package shiftmask 提供护士可排班次集合的位掩码编解码
package shiftmask

import (
	"strings"

	"github.com/zhiban/zhiban/pkg/errors"
)

// Shift 班次类型
type Shift string

const (
	ShiftNight   Shift = "N" // 大夜班
	ShiftEvening Shift = "E" // 小夜班
	ShiftDay     Shift = "D" // 白班
	ShiftMid     Shift = "M" // 专属班（不参与轮转）
)

// Mask 班次位掩码
// 业务约定：M 为专属班，设置 M 位后不得再设置任何轮转班位
type Mask int

const (
	BitNight   Mask = 1 << 0 // N = 1
	BitEvening Mask = 1 << 1 // E = 2
	BitDay     Mask = 1 << 2 // D = 4
	BitMid     Mask = 1 << 3 // M = 8

	// All 可排全部三个轮转班（不含M）
	All = BitDay | BitEvening | BitNight

	// None 不可排任何班次
	None Mask = 0

	validBits = All | BitMid
)

// bitOf 返回班次对应的位值
func bitOf(s Shift) Mask {
	switch s {
	case ShiftNight:
		return BitNight
	case ShiftEvening:
		return BitEvening
	case ShiftDay:
		return BitDay
	case ShiftMid:
		return BitMid
	default:
		return None
	}
}

// Encode 将班次集合编码为掩码
// M 与 D/E/N 组合时返回 InvalidShiftCombination
func Encode(shifts ...Shift) (Mask, error) {
	var m Mask
	for _, s := range shifts {
		bit := bitOf(s)
		if bit == None {
			return None, errors.New(errors.CodeInvalidInput, "未知班次: "+string(s))
		}
		m |= bit
	}
	if err := m.Validate(); err != nil {
		return None, err
	}
	return m, nil
}

// Decode 将掩码解码为班次集合，顺序固定为 N, E, D, M
func (m Mask) Decode() []Shift {
	shifts := make([]Shift, 0, 4)
	for _, s := range []Shift{ShiftNight, ShiftEvening, ShiftDay, ShiftMid} {
		if m.Has(s) {
			shifts = append(shifts, s)
		}
	}
	return shifts
}

// Has 检查掩码是否包含某班次（可排性判断）
func (m Mask) Has(s Shift) bool {
	bit := bitOf(s)
	return m&bit == bit
}

// IsMid 检查是否为专属班护士
func (m Mask) IsMid() bool {
	return m.Has(ShiftMid)
}

// IsRotating 检查是否参与 D/E/N 轮转
func (m Mask) IsRotating() bool {
	return m&All != 0 && !m.IsMid()
}

// Validate 校验掩码合法性：无未知位、M 位互斥
func (m Mask) Validate() error {
	if m&^validBits != 0 {
		return errors.New(errors.CodeInvalidInput, "掩码包含未知班次位")
	}
	if m.Has(ShiftMid) && m&All != 0 {
		return errors.InvalidShiftCombination(m.String())
	}
	return nil
}

// String 返回掩码的可读表示，如 "D|E|N"
func (m Mask) String() string {
	shifts := m.Decode()
	if len(shifts) == 0 {
		return "-"
	}
	parts := make([]string, len(shifts))
	for i, s := range shifts {
		parts[i] = string(s)
	}
	return strings.Join(parts, "|")
}
