package readiness

import (
	"context"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/staffing"
)

// ProvisioningSink 临时护士增援服务
// 成功时返回更新后的完整花名册（全量替换，不做增量合并）
type ProvisioningSink interface {
	AddTemporaryNurses(ctx context.Context, count int) ([]model.Nurse, error)
}

// GenerationTrigger 排班生成触发器，对状态机不透明
type GenerationTrigger interface {
	RequestGeneration(ctx context.Context, forced bool) error
}

// Session 一次生成确认流程的会话
// 每次打开确认弹窗时重建，不持久化
type Session struct {
	wardID  string
	roster  []model.Nurse
	rules   model.RuleSet
	state   State
	sink    ProvisioningSink
	trigger GenerationTrigger
	log     *logger.StaffingLogger
}

// NewSession 创建会话并完成首次评估
func NewSession(wardID string, roster []model.Nurse, rules model.RuleSet, sink ProvisioningSink, trigger GenerationTrigger) *Session {
	shortfall := staffing.Evaluate(roster, rules)
	return &Session{
		wardID:  wardID,
		roster:  append([]model.Nurse(nil), roster...),
		rules:   rules,
		state:   Initial(shortfall),
		sink:    sink,
		trigger: trigger,
		log:     logger.NewStaffingLogger(),
	}
}

// State 返回当前状态
func (s *Session) State() State {
	return s.state
}

// Roster 返回当前花名册快照
func (s *Session) Roster() []model.Nurse {
	return append([]model.Nurse(nil), s.roster...)
}

// transition 执行归约并记录迁移
func (s *Session) transition(e Event) State {
	prev := s.state
	s.state = Reduce(s.state, e)
	if s.state.Phase != prev.Phase {
		s.log.Transition(s.wardID, string(prev.Phase), string(s.state.Phase))
	}
	return s.state
}

// ProvisionTemporary 请求增援临时护士
// 增量按当前缺口裁剪；增援失败时状态与缺口保持不变，错误可重试
func (s *Session) ProvisionTemporary(ctx context.Context, increment int) (State, error) {
	if s.state.Terminal() {
		return s.state, errors.New(errors.CodeInvalidInput, "流程已结束")
	}
	if increment <= 0 {
		return s.state, errors.New(errors.CodeInvalidInput, "增援数量必须为正")
	}

	count := ClampIncrement(increment, s.state.Shortfall.AdditionalNeeded)
	if count == 0 {
		// 缺口已为零，无需增援
		return s.state, nil
	}

	updated, err := s.sink.AddTemporaryNurses(ctx, count)
	if err != nil {
		s.log.ProvisioningFailed(s.wardID, count, err)
		return s.state, errors.ProvisioningFailed(err)
	}

	s.roster = append([]model.Nurse(nil), updated...)
	shortfall := staffing.Evaluate(s.roster, s.rules)
	s.log.Evaluated(s.wardID, shortfall.NeededTotal, shortfall.CurrentTotal, shortfall.AdditionalNeeded)
	return s.transition(Reevaluated{Shortfall: shortfall}), nil
}

// RequestGeneration 请求生成排班
// forced 为 true 时绕过充足性检查；触发失败时状态保持不变
func (s *Session) RequestGeneration(ctx context.Context, forced bool) (State, error) {
	if s.state.Terminal() {
		return s.state, errors.New(errors.CodeInvalidInput, "流程已结束")
	}
	if !forced && s.state.Phase != PhaseComplete {
		return s.state, errors.New(errors.CodeForbidden, "人员不足，需先补齐缺口或强制生成").
			WithField("additional_needed", s.state.Shortfall.AdditionalNeeded)
	}

	if err := s.trigger.RequestGeneration(ctx, forced); err != nil {
		return s.state, errors.Wrap(err, errors.CodeInternal, "排班生成请求失败")
	}

	return s.transition(Generate{Forced: forced}), nil
}

// Defer 转去人员管理页
func (s *Session) Defer() State {
	return s.transition(Defer{})
}

// Cancel 取消流程
func (s *Session) Cancel() State {
	return s.transition(Cancel{})
}
