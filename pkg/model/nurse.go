// Package model 定义人员充足性引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

// Nurse 护士
type Nurse struct {
	MemberID  int64     `json:"member_id" db:"member_id"`
	WardID    uuid.UUID `json:"ward_id" db:"ward_id"`
	Name      string    `json:"name" db:"name"`
	Gender    Gender    `json:"gender" db:"gender"`
	Role      Role      `json:"role" db:"role"`
	Grade     int       `json:"grade" db:"grade"` // 工作年限
	ShiftMask shiftmask.Mask `json:"shift_flags" db:"shift_flags"`
	Skill     SkillLevel     `json:"skill_level" db:"skill_level"`
	Intensity WorkIntensity  `json:"work_intensity" db:"work_intensity"`

	// 临时护士：真实账号加入前的占位条目
	IsTemporary bool `json:"is_temporary" db:"is_temporary"`
	// 是否已与真实账号关联
	IsSynced bool `json:"is_synced" db:"is_synced"`
}

// IsHeadNurse 检查是否为护士长
func (n *Nurse) IsHeadNurse() bool {
	return n.Role == RoleHeadNurse
}

// IsMidDedicated 检查是否为专属班护士（不参与 D/E/N 轮转）
func (n *Nurse) IsMidDedicated() bool {
	return n.ShiftMask.IsMid()
}

// CanWork 检查护士是否可排某班次
func (n *Nurse) CanWork(s shiftmask.Shift) bool {
	return n.ShiftMask.Has(s)
}

// NewTemporaryNurse 创建临时护士，默认可排全部轮转班
func NewTemporaryNurse(memberID int64, wardID uuid.UUID, name string) Nurse {
	return Nurse{
		MemberID:    memberID,
		WardID:      wardID,
		Name:        name,
		Gender:      GenderFemale,
		Role:        RoleStaffNurse,
		ShiftMask:   shiftmask.All,
		Skill:       SkillMid,
		Intensity:   IntensityMedium,
		IsTemporary: true,
		IsSynced:    false,
	}
}
