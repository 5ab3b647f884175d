// Package model 定义人员充足性引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Gender 性别
type Gender string

const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
)

// Role 护士角色
type Role string

const (
	RoleHeadNurse  Role = "HN" // 护士长（可管理病区规则与花名册）
	RoleStaffNurse Role = "RN" // 普通护士
)

// SkillLevel 技能等级
type SkillLevel string

const (
	SkillLow  SkillLevel = "LOW"
	SkillMid  SkillLevel = "MID"
	SkillHigh SkillLevel = "HIGH"
)

// WorkIntensity 工作强度承受度
type WorkIntensity string

const (
	IntensityLow    WorkIntensity = "LOW"
	IntensityMedium WorkIntensity = "MEDIUM"
	IntensityHigh   WorkIntensity = "HIGH"
)

// Priority 规则优先级，仅影响前端展示权重，不参与硬性判断
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Valid 检查优先级取值
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Ward 病区（拥有花名册与排班规则）
type Ward struct {
	BaseModel
	HospitalID uuid.UUID `json:"hospital_id" db:"hospital_id"`
	Name       string    `json:"name" db:"name"`
	Code       string    `json:"code" db:"code"`
	Rules      RuleSet   `json:"rules" db:"-"`
}
