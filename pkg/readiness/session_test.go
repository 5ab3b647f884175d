package readiness

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

// fakeSink 测试用增援服务
type fakeSink struct {
	roster   []model.Nurse
	failWith error
	lastAdd  int
}

func (f *fakeSink) AddTemporaryNurses(_ context.Context, count int) ([]model.Nurse, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.lastAdd = count
	for i := 0; i < count; i++ {
		f.roster = append(f.roster, model.NewTemporaryNurse(int64(-1-i), [16]byte{}, ""))
	}
	return f.roster, nil
}

// fakeTrigger 测试用生成触发器
type fakeTrigger struct {
	called bool
	forced bool
	err    error
}

func (f *fakeTrigger) RequestGeneration(_ context.Context, forced bool) error {
	if f.err != nil {
		return f.err
	}
	f.called = true
	f.forced = forced
	return nil
}

func rotatingRoster(n int) []model.Nurse {
	var roster []model.Nurse
	for i := 0; i < n; i++ {
		roster = append(roster, model.Nurse{MemberID: int64(i + 1), ShiftMask: shiftmask.All})
	}
	return roster
}

func sessionRules(d, e, n int) model.RuleSet {
	rules := model.DefaultRuleSet()
	rules.WeekdayDay.Value = d
	rules.WeekdayEvening.Value = e
	rules.WeekdayNight.Value = n
	return rules
}

func TestSession_ProvisionToComplete(t *testing.T) {
	// 端到端场景：需求 3+3+2=8，5 个轮转护士 + 1 个专属班护士 → 缺3
	roster := rotatingRoster(5)
	roster = append(roster, model.Nurse{MemberID: 100, ShiftMask: shiftmask.BitMid})
	sink := &fakeSink{roster: append([]model.Nurse(nil), roster...)}
	trigger := &fakeTrigger{}

	s := NewSession("w1", roster, sessionRules(3, 3, 2), sink, trigger)

	state := s.State()
	if state.Phase != PhaseShortage || state.Shortfall.AdditionalNeeded != 3 {
		t.Fatalf("初始状态不正确: %+v", state)
	}
	if state.Shortfall.CurrentTotal != 5 {
		t.Fatalf("专属班护士不应计入轮转池: %+v", state.Shortfall)
	}

	// 补齐3人后迁移到 Complete
	state, err := s.ProvisionTemporary(context.Background(), 3)
	if err != nil {
		t.Fatalf("增援失败: %v", err)
	}
	if state.Phase != PhaseComplete || state.Shortfall.AdditionalNeeded != 0 {
		t.Errorf("补齐后状态不正确: %+v", state)
	}

	// Complete 下可正常生成
	state, err = s.RequestGeneration(context.Background(), false)
	if err != nil {
		t.Fatalf("生成请求失败: %v", err)
	}
	if state.Phase != PhaseGenerateRequested || state.Forced {
		t.Errorf("生成后状态不正确: %+v", state)
	}
	if !trigger.called || trigger.forced {
		t.Error("触发器应以 forced=false 被调用")
	}
}

func TestSession_ProvisionClamp(t *testing.T) {
	// 缺3人时请求增援5人，实际只发出3人的请求
	sink := &fakeSink{roster: rotatingRoster(5)}
	s := NewSession("w1", rotatingRoster(5), sessionRules(3, 3, 2), sink, &fakeTrigger{})

	if _, err := s.ProvisionTemporary(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if sink.lastAdd != 3 {
		t.Errorf("增援请求应被裁剪到 3, 实际: %d", sink.lastAdd)
	}
}

func TestSession_PartialProvisionStaysShortage(t *testing.T) {
	sink := &fakeSink{roster: rotatingRoster(5)}
	s := NewSession("w1", rotatingRoster(5), sessionRules(3, 3, 2), sink, &fakeTrigger{})

	state, err := s.ProvisionTemporary(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if state.Phase != PhaseShortage || state.Shortfall.AdditionalNeeded != 2 {
		t.Errorf("部分增援后状态不正确: %+v", state)
	}
}

func TestSession_ProvisioningFailure(t *testing.T) {
	// 增援失败：状态与缺口保持不变，错误可重试
	sink := &fakeSink{roster: rotatingRoster(5), failWith: stderrors.New("网络错误")}
	s := NewSession("w1", rotatingRoster(5), sessionRules(3, 3, 2), sink, &fakeTrigger{})
	before := s.State()

	state, err := s.ProvisionTemporary(context.Background(), 2)
	if !errors.Is(err, errors.CodeProvisioningFailed) {
		t.Fatalf("期望 PROVISIONING_FAILED, 实际: %v", err)
	}
	if !errors.IsRetryable(err) {
		t.Error("增援失败应可重试")
	}
	if state != before {
		t.Errorf("失败后状态应保持不变: %+v != %+v", state, before)
	}

	// 修复后重试成功
	sink.failWith = nil
	state, err = s.ProvisionTemporary(context.Background(), 3)
	if err != nil {
		t.Fatalf("重试应成功: %v", err)
	}
	if state.Phase != PhaseComplete {
		t.Errorf("重试补齐后应为 Complete: %+v", state)
	}
}

func TestSession_ForceGenerateFromShortage(t *testing.T) {
	trigger := &fakeTrigger{}
	s := NewSession("w1", rotatingRoster(2), sessionRules(3, 3, 2), &fakeSink{}, trigger)

	state, err := s.RequestGeneration(context.Background(), true)
	if err != nil {
		t.Fatalf("强制生成失败: %v", err)
	}
	if state.Phase != PhaseGenerateRequested || !state.Forced {
		t.Errorf("强制生成状态不正确: %+v", state)
	}
	if !trigger.forced {
		t.Error("触发器应以 forced=true 被调用")
	}
}

func TestSession_GenerateBlockedOnShortage(t *testing.T) {
	s := NewSession("w1", rotatingRoster(2), sessionRules(3, 3, 2), &fakeSink{}, &fakeTrigger{})

	if _, err := s.RequestGeneration(context.Background(), false); err == nil {
		t.Error("人员不足时普通生成应被拒绝")
	}
	if s.State().Phase != PhaseShortage {
		t.Error("被拒绝的生成不得改变状态")
	}
}

func TestSession_DeferAndCancel(t *testing.T) {
	s := NewSession("w1", rotatingRoster(2), sessionRules(3, 3, 2), &fakeSink{}, &fakeTrigger{})
	if state := s.Defer(); state.Phase != PhaseDeferred {
		t.Errorf("Defer 结果不正确: %+v", state)
	}

	// 终态后一切操作被拒绝
	if _, err := s.ProvisionTemporary(context.Background(), 1); err == nil {
		t.Error("终态后增援应被拒绝")
	}

	s2 := NewSession("w1", rotatingRoster(9), sessionRules(3, 3, 2), &fakeSink{}, &fakeTrigger{})
	if state := s2.Cancel(); state.Phase != PhaseCancelled {
		t.Errorf("Cancel 结果不正确: %+v", state)
	}
}
