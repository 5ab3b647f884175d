// Package readiness 提供自动排班生成的就绪状态机
// 状态机为纯归约器：(State, Event) -> State，终态吸收一切后续事件
package readiness

import (
	"github.com/zhiban/zhiban/pkg/model"
)

// Phase 状态机阶段
type Phase string

const (
	// PhaseShortage 人员不足，生成被挡
	PhaseShortage Phase = "shortage"
	// PhaseComplete 人员充足，可以生成
	PhaseComplete Phase = "complete"
	// PhaseGenerateRequested 终态：已请求生成
	PhaseGenerateRequested Phase = "generate_requested"
	// PhaseDeferred 终态：用户转去人员管理页，放弃本次流程
	PhaseDeferred Phase = "deferred"
	// PhaseCancelled 终态：用户关闭/取消
	PhaseCancelled Phase = "cancelled"
)

// State 状态机状态
type State struct {
	Phase     Phase                   `json:"phase"`
	Forced    bool                    `json:"forced,omitempty"` // 仅在 PhaseGenerateRequested 有意义
	Shortfall model.StaffingShortfall `json:"shortfall"`
}

// Terminal 检查是否为终态
func (s State) Terminal() bool {
	switch s.Phase {
	case PhaseGenerateRequested, PhaseDeferred, PhaseCancelled:
		return true
	default:
		return false
	}
}

// Event 状态机事件
type Event interface {
	isEvent()
}

// Reevaluated 充足性重新评估完成（增援成功或花名册变化后）
type Reevaluated struct {
	Shortfall model.StaffingShortfall
}

// Generate 请求生成排班
// Forced 为 true 时跳过充足性检查（显式逃生口，任何非终态下可用）
type Generate struct {
	Forced bool
}

// Defer 转去人员管理页，不触发生成
type Defer struct{}

// Cancel 关闭/取消流程
type Cancel struct{}

func (Reevaluated) isEvent() {}
func (Generate) isEvent()    {}
func (Defer) isEvent()       {}
func (Cancel) isEvent()      {}

// Initial 构建初始状态：有缺口则为 Shortage，否则 Complete
func Initial(shortfall model.StaffingShortfall) State {
	phase := PhaseComplete
	if shortfall.AdditionalNeeded > 0 {
		phase = PhaseShortage
	}
	return State{Phase: phase, Shortfall: shortfall}
}

// Reduce 纯归约：返回事件作用后的新状态
// 终态吸收一切事件；非法迁移返回原状态不变
func Reduce(s State, e Event) State {
	if s.Terminal() {
		return s
	}

	switch ev := e.(type) {
	case Reevaluated:
		next := Initial(ev.Shortfall)
		return next

	case Generate:
		if ev.Forced {
			// 强制生成不受缺口约束
			return State{Phase: PhaseGenerateRequested, Forced: true, Shortfall: s.Shortfall}
		}
		if s.Phase != PhaseComplete {
			return s
		}
		return State{Phase: PhaseGenerateRequested, Forced: false, Shortfall: s.Shortfall}

	case Defer:
		return State{Phase: PhaseDeferred, Shortfall: s.Shortfall}

	case Cancel:
		return State{Phase: PhaseCancelled, Shortfall: s.Shortfall}

	default:
		return s
	}
}

// ClampIncrement 对临时护士增量做上限裁剪
// 增援请求不得超过当前已知缺口
func ClampIncrement(requested, remainingNeeded int) int {
	if requested < 0 {
		return 0
	}
	if requested > remainingNeeded {
		return remainingNeeded
	}
	return requested
}
