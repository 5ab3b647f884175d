package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/roster"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

// RosterCommand 花名册变更命令输入
type RosterCommand struct {
	Type string `json:"type" validate:"required,oneof=add add_temporaries update remove"`

	// add 专用
	Nurse *NurseInput `json:"nurse,omitempty"`

	// add_temporaries 专用
	Count int      `json:"count,omitempty"`
	Names []string `json:"names,omitempty"`

	// update 专用
	MemberID  int64     `json:"member_id,omitempty"`
	Role      *string   `json:"role,omitempty"`
	Shifts    *[]string `json:"shifts,omitempty"`
	Skill     *string   `json:"skill_level,omitempty"`
	Intensity *string   `json:"work_intensity,omitempty"`

	// remove 专用
	MemberIDs []int64 `json:"member_ids,omitempty"`
}

// toCommand 转换为领域命令
func (c *RosterCommand) toCommand(wardID uuid.UUID) (roster.Command, error) {
	switch c.Type {
	case "add":
		if c.Nurse == nil {
			return nil, errors.New(errors.CodeInvalidInput, "add 命令缺少 nurse 字段")
		}
		nurse, err := c.Nurse.toNurse(wardID)
		if err != nil {
			return nil, err
		}
		return roster.AddNurse{Nurse: nurse}, nil

	case "add_temporaries":
		return roster.AddTemporaries{Count: c.Count, Names: c.Names}, nil

	case "update":
		cmd := roster.UpdateNurse{MemberID: c.MemberID}
		if c.Role != nil {
			role := model.Role(*c.Role)
			cmd.Role = &role
		}
		if c.Shifts != nil {
			shifts := make([]shiftmask.Shift, 0, len(*c.Shifts))
			for _, s := range *c.Shifts {
				shifts = append(shifts, shiftmask.Shift(s))
			}
			mask, err := shiftmask.Encode(shifts...)
			if err != nil {
				return nil, err
			}
			cmd.ShiftMask = &mask
		}
		if c.Skill != nil {
			skill := model.SkillLevel(*c.Skill)
			cmd.Skill = &skill
		}
		if c.Intensity != nil {
			intensity := model.WorkIntensity(*c.Intensity)
			cmd.Intensity = &intensity
		}
		return cmd, nil

	case "remove":
		return roster.RemoveNurses{MemberIDs: c.MemberIDs}, nil
	}
	return nil, errors.New(errors.CodeInvalidInput, "未知的命令类型").WithField("type", c.Type)
}

// ApplyRosterRequest 花名册变更请求：初始花名册 + 命令序列
type ApplyRosterRequest struct {
	WardID   string          `json:"ward_id" validate:"required,uuid"`
	Nurses   []NurseInput    `json:"nurses" validate:"dive"`
	Commands []RosterCommand `json:"commands" validate:"required,min=1,dive"`
}

// RosterNurse 花名册变更响应中的护士
type RosterNurse struct {
	MemberID  int64    `json:"member_id"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Shifts    []string `json:"shifts"`
	Temporary bool     `json:"temporary"`
}

// ApplyRosterResponse 花名册变更响应
type ApplyRosterResponse struct {
	WardID     string        `json:"ward_id"`
	Applied    int           `json:"applied"`
	Roster     []RosterNurse `json:"roster"`
	HeadNurses int           `json:"head_nurses"`
}

// ApplyRoster 批量执行花名册变更命令
// 命令按序执行，任一命令失败即中止，失败命令不产生任何变更
func (h *Handler) ApplyRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ApplyRosterRequest
	if appErr := h.decode(r, &req); appErr != nil {
		respondError(w, appErr)
		return
	}

	wardID, err := uuid.Parse(req.WardID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的病区ID格式"))
		return
	}

	nurses, appErr := toRoster(wardID, req.Nurses)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ward := roster.New(wardID, nurses)
	applied := 0
	for i := range req.Commands {
		cmd, err := req.Commands[i].toCommand(wardID)
		if err != nil {
			respondError(w, err)
			return
		}
		if _, err := ward.Apply(cmd); err != nil {
			respondError(w, err)
			return
		}
		applied++
	}

	snapshot := ward.Snapshot()
	out := make([]RosterNurse, 0, len(snapshot))
	for _, n := range snapshot {
		out = append(out, RosterNurse{
			MemberID:  n.MemberID,
			Name:      n.Name,
			Role:      string(n.Role),
			Shifts:    shiftStrings(n.ShiftMask),
			Temporary: n.IsTemporary,
		})
	}

	respondJSON(w, http.StatusOK, ApplyRosterResponse{
		WardID:     req.WardID,
		Applied:    applied,
		Roster:     out,
		HeadNurses: ward.HeadNurseCount(),
	})
}

// shiftStrings 位掩码解码为班次字符串列表
func shiftStrings(mask shiftmask.Mask) []string {
	shifts := mask.Decode()
	out := make([]string, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, string(s))
	}
	return out
}
