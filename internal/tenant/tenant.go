// Package tenant 提供多租户支持
// 租户即签约医院，病区和护士配额挂在租户配置上
package tenant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHospitalNotFound = errors.New("医院不存在")
	ErrInvalidHospital  = errors.New("无效的医院")
	ErrHospitalDisabled = errors.New("医院已停用")
)

// Hospital 签约医院
type Hospital struct {
	ID        uuid.UUID        `json:"id"`
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Status    string           `json:"status"` // active/suspended/expired
	Settings  HospitalSettings `json:"settings"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiredAt *time.Time       `json:"expired_at,omitempty"`
}

// HospitalSettings 医院配置
type HospitalSettings struct {
	MaxWards         int      `json:"max_wards"`           // 最大病区数
	MaxNursesPerWard int      `json:"max_nurses_per_ward"` // 单病区最大护士数
	Features         []string `json:"features"`            // 启用的功能
	APIRateLimit     int      `json:"api_rate_limit"`
	DataRetention    int      `json:"data_retention_days"`
}

// IsActive 检查医院是否活跃
func (h *Hospital) IsActive() bool {
	if h.Status != "active" {
		return false
	}
	if h.ExpiredAt != nil && h.ExpiredAt.Before(time.Now()) {
		return false
	}
	return true
}

// HasFeature 检查医院是否启用某功能
func (h *Hospital) HasFeature(feature string) bool {
	for _, f := range h.Settings.Features {
		if f == feature || f == "*" {
			return true
		}
	}
	return false
}

// Manager 医院租户管理器
type Manager struct {
	hospitals map[string]*Hospital // code -> hospital
	mu        sync.RWMutex
}

// NewManager 创建租户管理器
func NewManager() *Manager {
	return &Manager{hospitals: make(map[string]*Hospital)}
}

// Register 注册医院
func (m *Manager) Register(hospital *Hospital) error {
	if hospital == nil || hospital.Code == "" {
		return ErrInvalidHospital
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hospitals[hospital.Code] = hospital
	return nil
}

// Get 获取医院
func (m *Manager) Get(code string) (*Hospital, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hospital, exists := m.hospitals[code]
	if !exists {
		return nil, ErrHospitalNotFound
	}
	if !hospital.IsActive() {
		return nil, ErrHospitalDisabled
	}
	return hospital, nil
}

// GetByID 通过ID获取医院
func (m *Manager) GetByID(id uuid.UUID) (*Hospital, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, hospital := range m.hospitals {
		if hospital.ID == id {
			if !hospital.IsActive() {
				return nil, ErrHospitalDisabled
			}
			return hospital, nil
		}
	}
	return nil, ErrHospitalNotFound
}

// List 列出所有医院
func (m *Manager) List() []*Hospital {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Hospital, 0, len(m.hospitals))
	for _, h := range m.hospitals {
		result = append(result, h)
	}
	return result
}

// Remove 移除医院
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hospitals, code)
}

type hospitalContextKey struct{}

// WithHospital 将医院添加到上下文
func WithHospital(ctx context.Context, hospital *Hospital) context.Context {
	return context.WithValue(ctx, hospitalContextKey{}, hospital)
}

// FromContext 从上下文获取医院
func FromContext(ctx context.Context) (*Hospital, bool) {
	hospital, ok := ctx.Value(hospitalContextKey{}).(*Hospital)
	return hospital, ok
}

// DefaultSettings 默认医院配置
func DefaultSettings() HospitalSettings {
	return HospitalSettings{
		MaxWards:         50,
		MaxNursesPerWard: 200,
		Features:         []string{"staffing", "readiness", "duty_check", "stats"},
		APIRateLimit:     100,
		DataRetention:    365,
	}
}

// CreateDefaultHospital 创建默认医院（开发测试用）
func CreateDefaultHospital() *Hospital {
	return &Hospital{
		ID:        uuid.New(),
		Code:      "default",
		Name:      "默认医院",
		Status:    "active",
		Settings:  DefaultSettings(),
		CreatedAt: time.Now(),
	}
}
