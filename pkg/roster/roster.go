// Package roster 提供病区花名册的命令式变更
// 变更采用 命令 -> 新快照 的事务模式：命令失败时花名册保持原状
package roster

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

// Roster 病区花名册
type Roster struct {
	wardID uuid.UUID
	nurses []model.Nurse
	// 临时护士的本地ID序列（负数，避免与真实 memberId 冲突）
	nextTempID int64
}

// New 创建花名册
func New(wardID uuid.UUID, nurses []model.Nurse) *Roster {
	r := &Roster{
		wardID:     wardID,
		nurses:     append([]model.Nurse(nil), nurses...),
		nextTempID: -1,
	}
	for _, n := range nurses {
		if n.MemberID <= r.nextTempID {
			r.nextTempID = n.MemberID - 1
		}
	}
	return r
}

// WardID 返回所属病区
func (r *Roster) WardID() uuid.UUID {
	return r.wardID
}

// Snapshot 返回当前花名册的副本
func (r *Roster) Snapshot() []model.Nurse {
	return append([]model.Nurse(nil), r.nurses...)
}

// Size 返回花名册人数
func (r *Roster) Size() int {
	return len(r.nurses)
}

// HeadNurseCount 返回护士长人数
func (r *Roster) HeadNurseCount() int {
	count := 0
	for i := range r.nurses {
		if r.nurses[i].IsHeadNurse() {
			count++
		}
	}
	return count
}

// Command 花名册变更命令
type Command interface {
	// apply 在副本上执行变更，返回错误时副本被丢弃
	apply(r *Roster, nurses []model.Nurse) ([]model.Nurse, error)
}

// Apply 执行命令并返回新快照
// 命令在副本上执行；任何错误都使花名册保持执行前的状态
func (r *Roster) Apply(cmd Command) ([]model.Nurse, error) {
	working := append([]model.Nurse(nil), r.nurses...)
	result, err := cmd.apply(r, working)
	if err != nil {
		return nil, err
	}
	r.nurses = result
	return r.Snapshot(), nil
}

// AddNurse 添加护士命令
type AddNurse struct {
	Nurse model.Nurse
}

func (c AddNurse) apply(r *Roster, nurses []model.Nurse) ([]model.Nurse, error) {
	if err := c.Nurse.ShiftMask.Validate(); err != nil {
		return nil, err
	}
	for i := range nurses {
		if nurses[i].MemberID == c.Nurse.MemberID {
			return nil, errors.New(errors.CodeInvalidInput, "护士已在花名册中").
				WithField("member_id", c.Nurse.MemberID)
		}
	}
	n := c.Nurse
	n.WardID = r.wardID
	return append(nurses, n), nil
}

// AddTemporaries 批量添加临时护士命令
// 临时护士默认可排全部轮转班
type AddTemporaries struct {
	Count int
	Names []string // 可选，不足时自动编号
}

func (c AddTemporaries) apply(r *Roster, nurses []model.Nurse) ([]model.Nurse, error) {
	if c.Count <= 0 {
		return nil, errors.New(errors.CodeInvalidInput, "临时护士数量必须为正")
	}
	for i := 0; i < c.Count; i++ {
		name := ""
		if i < len(c.Names) {
			name = c.Names[i]
		}
		if name == "" {
			name = tempName(len(nurses) + 1)
		}
		n := model.NewTemporaryNurse(r.nextTempID, r.wardID, name)
		r.nextTempID--
		nurses = append(nurses, n)
	}
	return nurses, nil
}

// UpdateNurse 更新护士信息命令
type UpdateNurse struct {
	MemberID  int64
	Role      *model.Role
	ShiftMask *shiftmask.Mask
	Skill     *model.SkillLevel
	Intensity *model.WorkIntensity
}

func (c UpdateNurse) apply(r *Roster, nurses []model.Nurse) ([]model.Nurse, error) {
	idx := -1
	for i := range nurses {
		if nurses[i].MemberID == c.MemberID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.ErrNotFound.WithField("member_id", c.MemberID)
	}

	n := nurses[idx]
	if c.Role != nil {
		n.Role = *c.Role
	}
	if c.ShiftMask != nil {
		if err := c.ShiftMask.Validate(); err != nil {
			return nil, err
		}
		n.ShiftMask = *c.ShiftMask
	}
	if c.Skill != nil {
		n.Skill = *c.Skill
	}
	if c.Intensity != nil {
		n.Intensity = *c.Intensity
	}

	// 角色降级不得使病区失去最后一名护士长
	if nurses[idx].IsHeadNurse() && !n.IsHeadNurse() {
		if headNurseCount(nurses)-1 < 1 {
			return nil, errors.LastHeadNurse()
		}
	}

	nurses[idx] = n
	return nurses, nil
}

// RemoveNurses 移除护士命令
// 移除后病区必须至少保留一名护士长，否则整个命令被拒绝
type RemoveNurses struct {
	MemberIDs []int64
}

func (c RemoveNurses) apply(_ *Roster, nurses []model.Nurse) ([]model.Nurse, error) {
	if len(c.MemberIDs) == 0 {
		return nurses, nil
	}

	removing := make(map[int64]bool, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		removing[id] = true
	}

	remaining := make([]model.Nurse, 0, len(nurses))
	removed := 0
	for _, n := range nurses {
		if removing[n.MemberID] {
			removed++
			continue
		}
		remaining = append(remaining, n)
	}
	if removed != len(removing) {
		return nil, errors.ErrNotFound.WithDetails("部分护士不在花名册中")
	}

	// 守卫先于变更生效：剩余花名册无护士长则拒绝
	if headNurseCount(remaining) == 0 {
		return nil, errors.LastHeadNurse()
	}

	return remaining, nil
}

// headNurseCount 统计护士长人数
func headNurseCount(nurses []model.Nurse) int {
	count := 0
	for i := range nurses {
		if nurses[i].IsHeadNurse() {
			count++
		}
	}
	return count
}

// tempName 生成临时护士默认姓名
func tempName(seq int) string {
	return "临时护士" + strconv.Itoa(seq)
}
