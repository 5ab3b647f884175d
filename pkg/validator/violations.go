// Package validator 提供排班表规则校验
// 对一个月的排班表按病区规则检测违规，违规项携带规则优先级供前端加权展示
package validator

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/model"
)

// ViolationType 违规类型
type ViolationType string

const (
	ViolationMaxConsecutiveShift ViolationType = "max_consecutive_shift" // 连续上班超限
	ViolationMaxConsecutiveNight ViolationType = "max_consecutive_night" // 连续夜班超限
	ViolationMinConsecutiveNight ViolationType = "min_consecutive_night" // 夜班连段过短
)

// Violation 单条违规
type Violation struct {
	Type     ViolationType  `json:"type"`
	MemberID int64          `json:"member_id"`
	Name     string         `json:"name,omitempty"`
	StartDay int            `json:"start_day"` // 1-based
	EndDay   int            `json:"end_day"`
	Priority model.Priority `json:"priority"`
	Message  string         `json:"message"`
}

// NurseDuties 某护士一个月的排班串
// 每个字符代表一天：D/E/N/M 为上班，O 为休息，X 为未排
type NurseDuties struct {
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
	Duties   string `json:"duties"`
}

// Detector 违规检测器
type Detector struct {
	rules model.RuleSet
}

// NewDetector 创建违规检测器
func NewDetector(rules model.RuleSet) *Detector {
	return &Detector{rules: rules}
}

// DetectAll 检测整张排班表的违规
func (d *Detector) DetectAll(table []NurseDuties) []Violation {
	var violations []Violation
	for _, row := range table {
		violations = append(violations, d.DetectRow(row)...)
	}
	return violations
}

// DetectRow 检测单个护士的排班串
func (d *Detector) DetectRow(row NurseDuties) []Violation {
	var violations []Violation
	violations = append(violations, d.checkConsecutiveShifts(row)...)
	violations = append(violations, d.checkNightRuns(row)...)
	return violations
}

// isWorkDay 检查某天是否为上班日
func isWorkDay(c byte) bool {
	switch c {
	case 'D', 'E', 'N', 'M':
		return true
	default:
		return false
	}
}

// checkConsecutiveShifts 检测连续上班超限
func (d *Detector) checkConsecutiveShifts(row NurseDuties) []Violation {
	maxShift := d.rules.MaxConsecutiveShift.Value
	var violations []Violation

	runStart := -1
	duties := row.Duties
	for i := 0; i <= len(duties); i++ {
		working := i < len(duties) && isWorkDay(duties[i])
		if working {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			runLen := i - runStart
			if runLen > maxShift {
				violations = append(violations, Violation{
					Type:     ViolationMaxConsecutiveShift,
					MemberID: row.MemberID,
					Name:     row.Name,
					StartDay: runStart + 1,
					EndDay:   i,
					Priority: d.rules.MaxConsecutiveShift.Priority,
					Message:  fmt.Sprintf("连续上班 %d 天，超过上限 %d 天", runLen, maxShift),
				})
			}
			runStart = -1
		}
	}
	return violations
}

// checkNightRuns 检测夜班连段的上下限
func (d *Detector) checkNightRuns(row NurseDuties) []Violation {
	maxNight := d.rules.MaxConsecutiveNight.Value
	minNight := d.rules.MinConsecutiveNight.Value
	var violations []Violation

	runStart := -1
	duties := row.Duties
	for i := 0; i <= len(duties); i++ {
		isNight := i < len(duties) && duties[i] == 'N'
		if isNight {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			runLen := i - runStart
			if runLen > maxNight {
				violations = append(violations, Violation{
					Type:     ViolationMaxConsecutiveNight,
					MemberID: row.MemberID,
					Name:     row.Name,
					StartDay: runStart + 1,
					EndDay:   i,
					Priority: d.rules.MaxConsecutiveNight.Priority,
					Message:  fmt.Sprintf("连续夜班 %d 天，超过上限 %d 天", runLen, maxNight),
				})
			}
			if runLen < minNight {
				// 月末未收尾的夜班连段不按过短处理
				if i < len(duties) {
					violations = append(violations, Violation{
						Type:     ViolationMinConsecutiveNight,
						MemberID: row.MemberID,
						Name:     row.Name,
						StartDay: runStart + 1,
						EndDay:   i,
						Priority: d.rules.MinConsecutiveNight.Priority,
						Message:  fmt.Sprintf("夜班连段仅 %d 天，少于下限 %d 天", runLen, minNight),
					})
				}
			}
			runStart = -1
		}
	}
	return violations
}
