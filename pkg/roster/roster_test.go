package roster

import (
	"testing"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/shiftmask"
)

func baseRoster() *Roster {
	wardID := uuid.New()
	return New(wardID, []model.Nurse{
		{MemberID: 1, Name: "张护士长", Role: model.RoleHeadNurse, ShiftMask: shiftmask.All},
		{MemberID: 2, Name: "李护士", Role: model.RoleStaffNurse, ShiftMask: shiftmask.All},
		{MemberID: 3, Name: "王护士", Role: model.RoleStaffNurse, ShiftMask: shiftmask.BitMid},
	})
}

func TestApply_AddNurse(t *testing.T) {
	r := baseRoster()

	snapshot, err := r.Apply(AddNurse{Nurse: model.Nurse{
		MemberID: 4, Name: "赵护士", Role: model.RoleStaffNurse, ShiftMask: shiftmask.All,
	}})
	if err != nil {
		t.Fatalf("添加护士失败: %v", err)
	}
	if len(snapshot) != 4 {
		t.Errorf("花名册人数 = %d, 期望 4", len(snapshot))
	}
	if snapshot[3].WardID != r.WardID() {
		t.Error("新护士应归属本病区")
	}
}

func TestApply_AddNurse_Duplicate(t *testing.T) {
	r := baseRoster()

	_, err := r.Apply(AddNurse{Nurse: model.Nurse{MemberID: 2, ShiftMask: shiftmask.All}})
	if err == nil {
		t.Fatal("重复 memberId 应被拒绝")
	}
	if r.Size() != 3 {
		t.Error("失败的命令不得改变花名册")
	}
}

func TestApply_AddNurse_InvalidMask(t *testing.T) {
	r := baseRoster()

	_, err := r.Apply(AddNurse{Nurse: model.Nurse{MemberID: 9, ShiftMask: 12}}) // M|D
	if !errors.Is(err, errors.CodeInvalidShiftCombination) {
		t.Errorf("期望 INVALID_SHIFT_COMBINATION, 实际: %v", err)
	}
}

func TestApply_AddTemporaries(t *testing.T) {
	r := baseRoster()

	snapshot, err := r.Apply(AddTemporaries{Count: 3})
	if err != nil {
		t.Fatalf("添加临时护士失败: %v", err)
	}
	if len(snapshot) != 6 {
		t.Fatalf("花名册人数 = %d, 期望 6", len(snapshot))
	}

	seen := make(map[int64]bool)
	for _, n := range snapshot[3:] {
		if !n.IsTemporary {
			t.Error("新增条目应标记为临时护士")
		}
		if n.ShiftMask != shiftmask.All {
			t.Error("临时护士默认应可排全部轮转班")
		}
		if n.MemberID >= 0 || seen[n.MemberID] {
			t.Errorf("临时ID应为负且唯一: %d", n.MemberID)
		}
		seen[n.MemberID] = true
	}
}

func TestApply_AddTemporaries_InvalidCount(t *testing.T) {
	r := baseRoster()
	if _, err := r.Apply(AddTemporaries{Count: 0}); err == nil {
		t.Error("数量为0应被拒绝")
	}
}

func TestApply_UpdateNurse(t *testing.T) {
	r := baseRoster()

	mask := shiftmask.BitDay | shiftmask.BitEvening
	skill := model.SkillHigh
	snapshot, err := r.Apply(UpdateNurse{MemberID: 2, ShiftMask: &mask, Skill: &skill})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if snapshot[1].ShiftMask != mask || snapshot[1].Skill != model.SkillHigh {
		t.Errorf("更新未生效: %+v", snapshot[1])
	}
}

func TestApply_UpdateNurse_DemoteLastHeadNurse(t *testing.T) {
	r := baseRoster()

	role := model.RoleStaffNurse
	_, err := r.Apply(UpdateNurse{MemberID: 1, Role: &role})
	if !errors.Is(err, errors.CodeLastHeadNurse) {
		t.Errorf("降级最后一名护士长应返回 LAST_HEAD_NURSE, 实际: %v", err)
	}

	// 花名册保持原状
	if snapshot := r.Snapshot(); snapshot[0].Role != model.RoleHeadNurse {
		t.Error("失败的命令不得改变角色")
	}
}

func TestApply_RemoveNurses(t *testing.T) {
	r := baseRoster()

	snapshot, err := r.Apply(RemoveNurses{MemberIDs: []int64{2, 3}})
	if err != nil {
		t.Fatalf("移除失败: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].MemberID != 1 {
		t.Errorf("移除结果不正确: %+v", snapshot)
	}
}

func TestApply_RemoveNurses_LastHeadNurseGuard(t *testing.T) {
	// 守卫必须在变更生效前拒绝，且花名册逐字段保持原状
	wardID := uuid.New()
	r := New(wardID, []model.Nurse{
		{MemberID: 1, Name: "唯一护士长", Role: model.RoleHeadNurse, ShiftMask: shiftmask.All},
	})
	before := r.Snapshot()

	_, err := r.Apply(RemoveNurses{MemberIDs: []int64{1}})
	if !errors.Is(err, errors.CodeLastHeadNurse) {
		t.Fatalf("期望 LAST_HEAD_NURSE, 实际: %v", err)
	}

	after := r.Snapshot()
	if len(after) != len(before) || after[0] != before[0] {
		t.Error("被拒绝的移除不得改变花名册")
	}
}

func TestApply_RemoveNurses_NotFound(t *testing.T) {
	r := baseRoster()
	if _, err := r.Apply(RemoveNurses{MemberIDs: []int64{42}}); err == nil {
		t.Error("移除不存在的护士应失败")
	}
	if r.Size() != 3 {
		t.Error("失败的命令不得改变花名册")
	}
}

func TestHeadNurseCount(t *testing.T) {
	r := baseRoster()
	if got := r.HeadNurseCount(); got != 1 {
		t.Errorf("HeadNurseCount = %d, 期望 1", got)
	}
}
