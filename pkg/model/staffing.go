// Package model 定义人员充足性引擎的核心数据模型
package model

// StaffingShortfall 人员缺口
// 派生结果，随花名册或规则变化重新计算，永不持久化
type StaffingShortfall struct {
	NeededTotal      int `json:"needed_total"`      // 规则要求的轮转护士数
	CurrentTotal     int `json:"current_total"`     // 当前可轮转护士数（不含专属班）
	AdditionalNeeded int `json:"additional_needed"` // max(0, needed - current)
}

// IsSufficient 检查当前人员是否满足规则要求
func (s StaffingShortfall) IsSufficient() bool {
	return s.AdditionalNeeded == 0
}

// NewShortfall 根据需求与现有人数构造缺口
func NewShortfall(needed, current int) StaffingShortfall {
	additional := needed - current
	if additional < 0 {
		additional = 0
	}
	return StaffingShortfall{
		NeededTotal:      needed,
		CurrentTotal:     current,
		AdditionalNeeded: additional,
	}
}
