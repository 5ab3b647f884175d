package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHospital_IsActive(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name     string
		hospital *Hospital
		expected bool
	}{
		{"活跃医院", &Hospital{Status: "active"}, true},
		{"暂停医院", &Hospital{Status: "suspended"}, false},
		{"未过期医院", &Hospital{Status: "active", ExpiredAt: &future}, true},
		{"已过期医院", &Hospital{Status: "active", ExpiredAt: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.hospital.IsActive(); result != tt.expected {
				t.Errorf("IsActive() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestHospital_HasFeature(t *testing.T) {
	h := &Hospital{Settings: HospitalSettings{Features: []string{"staffing", "readiness"}}}

	if !h.HasFeature("staffing") {
		t.Error("应有staffing功能")
	}
	if h.HasFeature("billing") {
		t.Error("不应有billing功能")
	}

	wild := &Hospital{Settings: HospitalSettings{Features: []string{"*"}}}
	if !wild.HasFeature("anything") {
		t.Error("通配符应匹配任何功能")
	}
}

func TestManager(t *testing.T) {
	m := NewManager()

	h := &Hospital{
		ID:       uuid.New(),
		Code:     "h001",
		Name:     "第一医院",
		Status:   "active",
		Settings: DefaultSettings(),
	}
	if err := m.Register(h); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := m.Get("h001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "第一医院" {
		t.Errorf("医院名称不正确: %s", got.Name)
	}

	byID, err := m.GetByID(h.ID)
	if err != nil || byID.Code != "h001" {
		t.Errorf("GetByID 结果不正确: %+v, err=%v", byID, err)
	}

	if _, err := m.Get("nonexistent"); err != ErrHospitalNotFound {
		t.Errorf("不存在的医院应返回 ErrHospitalNotFound, 实际: %v", err)
	}

	if err := m.Register(&Hospital{}); err != ErrInvalidHospital {
		t.Errorf("空编码医院应返回 ErrInvalidHospital, 实际: %v", err)
	}

	// 停用医院不可获取
	h.Status = "suspended"
	if _, err := m.Get("h001"); err != ErrHospitalDisabled {
		t.Errorf("停用医院应返回 ErrHospitalDisabled, 实际: %v", err)
	}

	m.Remove("h001")
	if len(m.List()) != 0 {
		t.Error("移除后列表应为空")
	}
}

func TestContext(t *testing.T) {
	h := CreateDefaultHospital()
	ctx := WithHospital(context.Background(), h)

	got, ok := FromContext(ctx)
	if !ok || got.Code != "default" {
		t.Errorf("上下文医院不正确: %+v, ok=%v", got, ok)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Error("空上下文不应有医院")
	}
}
