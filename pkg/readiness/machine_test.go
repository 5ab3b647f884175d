package readiness

import (
	"testing"

	"github.com/zhiban/zhiban/pkg/model"
)

func TestInitial(t *testing.T) {
	if s := Initial(model.NewShortfall(8, 5)); s.Phase != PhaseShortage {
		t.Errorf("有缺口时初始状态应为 Shortage, 实际: %s", s.Phase)
	}
	if s := Initial(model.NewShortfall(8, 8)); s.Phase != PhaseComplete {
		t.Errorf("无缺口时初始状态应为 Complete, 实际: %s", s.Phase)
	}
}

func TestReduce_Reevaluated(t *testing.T) {
	s := Initial(model.NewShortfall(8, 5))

	// 缺口未补齐：仍为 Shortage，但缺口数更新
	s = Reduce(s, Reevaluated{Shortfall: model.NewShortfall(8, 7)})
	if s.Phase != PhaseShortage || s.Shortfall.AdditionalNeeded != 1 {
		t.Errorf("部分补齐后状态不正确: %+v", s)
	}

	// 缺口补齐：迁移到 Complete
	s = Reduce(s, Reevaluated{Shortfall: model.NewShortfall(8, 8)})
	if s.Phase != PhaseComplete {
		t.Errorf("补齐后应为 Complete, 实际: %s", s.Phase)
	}
}

func TestReduce_ForceGenerate(t *testing.T) {
	// 强制生成在任意缺口下都到达终态，包括缺口为0的情况
	for _, shortfall := range []model.StaffingShortfall{
		model.NewShortfall(8, 0),
		model.NewShortfall(8, 5),
		model.NewShortfall(8, 8),
	} {
		s := Reduce(Initial(shortfall), Generate{Forced: true})
		if s.Phase != PhaseGenerateRequested || !s.Forced {
			t.Errorf("缺口 %+v 下强制生成结果不正确: %+v", shortfall, s)
		}
	}
}

func TestReduce_GenerateBlockedOnShortage(t *testing.T) {
	s := Initial(model.NewShortfall(8, 5))
	next := Reduce(s, Generate{Forced: false})
	if next != s {
		t.Errorf("Shortage 下普通生成应为非法迁移（状态不变）: %+v", next)
	}
}

func TestReduce_GenerateFromComplete(t *testing.T) {
	s := Reduce(Initial(model.NewShortfall(5, 6)), Generate{Forced: false})
	if s.Phase != PhaseGenerateRequested || s.Forced {
		t.Errorf("Complete 下生成结果不正确: %+v", s)
	}
}

func TestReduce_DeferAndCancel(t *testing.T) {
	if s := Reduce(Initial(model.NewShortfall(8, 5)), Defer{}); s.Phase != PhaseDeferred {
		t.Errorf("Defer 结果不正确: %+v", s)
	}
	if s := Reduce(Initial(model.NewShortfall(8, 8)), Cancel{}); s.Phase != PhaseCancelled {
		t.Errorf("Cancel 结果不正确: %+v", s)
	}
}

func TestReduce_TerminalAbsorbs(t *testing.T) {
	s := Reduce(Initial(model.NewShortfall(8, 8)), Generate{})
	for _, e := range []Event{Reevaluated{}, Generate{Forced: true}, Defer{}, Cancel{}} {
		if next := Reduce(s, e); next != s {
			t.Errorf("终态应吸收事件 %T: %+v", e, next)
		}
	}
}

func TestClampIncrement(t *testing.T) {
	tests := []struct {
		requested, remaining, want int
	}{
		{1, 3, 1},
		{3, 3, 3},
		{4, 3, 3}, // 超额请求被裁剪到缺口
		{10, 0, 0},
		{-1, 3, 0},
	}
	for _, tt := range tests {
		if got := ClampIncrement(tt.requested, tt.remaining); got != tt.want {
			t.Errorf("ClampIncrement(%d, %d) = %d, 期望 %d", tt.requested, tt.remaining, got, tt.want)
		}
	}
}
