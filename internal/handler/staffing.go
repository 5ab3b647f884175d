package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/readiness"
	"github.com/zhiban/zhiban/pkg/shiftmask"
	"github.com/zhiban/zhiban/pkg/staffing"
)

// NurseInput 护士输入
type NurseInput struct {
	MemberID int64    `json:"member_id" validate:"required"`
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	Shifts   []string `json:"shifts" validate:"required,min=1"`
}

// toNurse 转换为领域模型，班次列表经位掩码编码校验
func (in *NurseInput) toNurse(wardID uuid.UUID) (model.Nurse, error) {
	shifts := make([]shiftmask.Shift, 0, len(in.Shifts))
	for _, s := range in.Shifts {
		shifts = append(shifts, shiftmask.Shift(s))
	}
	mask, err := shiftmask.Encode(shifts...)
	if err != nil {
		return model.Nurse{}, err
	}

	role := model.Role(in.Role)
	if role == "" {
		role = model.RoleStaffNurse
	}
	return model.Nurse{
		MemberID:  in.MemberID,
		WardID:    wardID,
		Name:      in.Name,
		Role:      role,
		ShiftMask: mask,
	}, nil
}

// EvaluateRequest 充足性评估请求
type EvaluateRequest struct {
	WardID string        `json:"ward_id" validate:"required,uuid"`
	Nurses []NurseInput  `json:"nurses" validate:"dive"`
	Rules  model.RuleSet `json:"rules"`
}

// EvaluateResponse 充足性评估响应
type EvaluateResponse struct {
	WardID           string `json:"ward_id"`
	NeededTotal      int    `json:"needed_total"`
	CurrentTotal     int    `json:"current_total"`
	AdditionalNeeded int    `json:"additional_needed"`
	Sufficient       bool   `json:"sufficient"`
	MidDedicated     int    `json:"mid_dedicated"`
}

// EvaluateStaffing 评估病区人力充足性
func (h *Handler) EvaluateStaffing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req EvaluateRequest
	if appErr := h.decode(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if err := req.Rules.Validate(); err != nil {
		respondError(w, err)
		return
	}

	wardID, err := uuid.Parse(req.WardID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的病区ID格式"))
		return
	}

	roster, appErr := toRoster(wardID, req.Nurses)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	shortfall := staffing.Evaluate(roster, req.Rules)
	metrics.RecordEvaluation(req.WardID, shortfall.IsSufficient())

	respondJSON(w, http.StatusOK, EvaluateResponse{
		WardID:           req.WardID,
		NeededTotal:      shortfall.NeededTotal,
		CurrentTotal:     shortfall.CurrentTotal,
		AdditionalNeeded: shortfall.AdditionalNeeded,
		Sufficient:       shortfall.IsSufficient(),
		MidDedicated:     staffing.CountMidDedicated(roster),
	})
}

// DecisionEvent 就绪流程事件输入
type DecisionEvent struct {
	Type      string `json:"type" validate:"required,oneof=provision generate defer cancel"`
	Increment int    `json:"increment,omitempty"` // provision 专用
	Forced    bool   `json:"forced,omitempty"`    // generate 专用
}

// DecideRequest 就绪流程请求：初始花名册 + 事件序列
type DecideRequest struct {
	WardID string          `json:"ward_id" validate:"required,uuid"`
	Nurses []NurseInput    `json:"nurses" validate:"dive"`
	Rules  model.RuleSet   `json:"rules"`
	Events []DecisionEvent `json:"events" validate:"dive"`
}

// DecideResponse 就绪流程响应
type DecideResponse struct {
	State      readiness.State `json:"state"`
	RosterSize int             `json:"roster_size"`
	Generated  bool            `json:"generated"`
	Forced     bool            `json:"forced"`
}

// localSink 进程内增援：直接把临时护士追加到花名册
type localSink struct {
	wardID uuid.UUID
	roster []model.Nurse
	nextID int64
}

func (s *localSink) AddTemporaryNurses(_ context.Context, count int) ([]model.Nurse, error) {
	for i := 0; i < count; i++ {
		s.nextID--
		s.roster = append(s.roster, model.NewTemporaryNurse(s.nextID, s.wardID, ""))
	}
	return s.roster, nil
}

// recordTrigger 记录生成请求的触发器
type recordTrigger struct {
	generated bool
	forced    bool
}

func (t *recordTrigger) RequestGeneration(_ context.Context, forced bool) error {
	t.generated = true
	t.forced = forced
	return nil
}

// DecideReadiness 运行一次生成确认流程
// 按提交的事件序列驱动状态机，返回最终状态
func (h *Handler) DecideReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req DecideRequest
	if appErr := h.decode(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}
	if err := req.Rules.Validate(); err != nil {
		respondError(w, err)
		return
	}

	wardID, err := uuid.Parse(req.WardID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的病区ID格式"))
		return
	}

	roster, appErr := toRoster(wardID, req.Nurses)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	var sink readiness.ProvisioningSink
	if h.sinkFor != nil {
		sink = h.sinkFor(wardID)
	} else {
		sink = &localSink{wardID: wardID, roster: append([]model.Nurse(nil), roster...)}
	}
	trigger := &recordTrigger{}
	session := readiness.NewSession(req.WardID, roster, req.Rules, sink, trigger)

	for _, event := range req.Events {
		var err error
		prev := session.State().Phase
		switch event.Type {
		case "provision":
			_, err = session.ProvisionTemporary(r.Context(), event.Increment)
		case "generate":
			_, err = session.RequestGeneration(r.Context(), event.Forced)
		case "defer":
			session.Defer()
		case "cancel":
			session.Cancel()
		}
		if err != nil {
			if errors.Is(err, errors.CodeProvisioningFailed) {
				metrics.RecordProvisioningFailure(req.WardID)
			}
			respondError(w, err)
			return
		}
		if next := session.State().Phase; next != prev {
			metrics.RecordTransition(string(prev), string(next))
		}
	}

	respondJSON(w, http.StatusOK, DecideResponse{
		State:      session.State(),
		RosterSize: len(session.Roster()),
		Generated:  trigger.generated,
		Forced:     trigger.forced,
	})
}

// toRoster 批量转换护士输入
func toRoster(wardID uuid.UUID, inputs []NurseInput) ([]model.Nurse, *errors.AppError) {
	roster := make([]model.Nurse, 0, len(inputs))
	for i := range inputs {
		nurse, err := inputs[i].toNurse(wardID)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				return nil, appErr
			}
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的护士班次")
		}
		roster = append(roster, nurse)
	}
	return roster, nil
}
