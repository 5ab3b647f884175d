package handler

import (
	"net/http"
	"testing"

	"github.com/zhiban/zhiban/pkg/errors"
)

func headNurseInput(id int64, name string) NurseInput {
	return NurseInput{MemberID: id, Name: name, Role: "HN", Shifts: []string{"N", "E", "D"}}
}

func TestApplyRoster(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.ApplyRoster, ApplyRosterRequest{
		WardID: testWardID,
		Nurses: append(rotatingInputs(3), headNurseInput(99, "王护士长")),
		Commands: []RosterCommand{
			{Type: "add", Nurse: &NurseInput{MemberID: 4, Name: "李四", Shifts: []string{"N", "E", "D"}}},
			{Type: "add_temporaries", Count: 2, Names: []string{"临时甲"}},
			{Type: "remove", MemberIDs: []int64{1}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码不正确: %d (body=%s)", rec.Code, rec.Body.String())
	}

	var resp ApplyRosterResponse
	decodeBody(t, rec, &resp)
	if resp.Applied != 3 {
		t.Errorf("执行命令数不正确: %d", resp.Applied)
	}
	// 4 初始 + 1 新增 + 2 临时 - 1 移除
	if len(resp.Roster) != 6 {
		t.Fatalf("花名册人数不正确: %d", len(resp.Roster))
	}
	if resp.HeadNurses != 1 {
		t.Errorf("护士长人数不正确: %d", resp.HeadNurses)
	}

	temps := 0
	for _, n := range resp.Roster {
		if n.Temporary {
			temps++
			if n.MemberID >= 0 {
				t.Errorf("临时护士应使用负数ID: %d", n.MemberID)
			}
		}
	}
	if temps != 2 {
		t.Errorf("临时护士人数不正确: %d", temps)
	}
}

func TestApplyRoster_LastHeadNurse(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.ApplyRoster, ApplyRosterRequest{
		WardID: testWardID,
		Nurses: append(rotatingInputs(2), headNurseInput(99, "王护士长")),
		Commands: []RosterCommand{
			{Type: "remove", MemberIDs: []int64{99}},
		},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("移除最后护士长应返回 409: %d (body=%s)", rec.Code, rec.Body.String())
	}

	var errResp struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &errResp)
	if errResp.Code != string(errors.CodeLastHeadNurse) {
		t.Errorf("错误码不正确: %s", errResp.Code)
	}
}

func TestApplyRoster_UpdateDemoteGuard(t *testing.T) {
	h := newTestHandler(t)

	staff := "RN"
	rec := postJSON(t, h.ApplyRoster, ApplyRosterRequest{
		WardID: testWardID,
		Nurses: []NurseInput{headNurseInput(1, "唯一护士长")},
		Commands: []RosterCommand{
			{Type: "update", MemberID: 1, Role: &staff},
		},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("降级唯一护士长应返回 409: %d (body=%s)", rec.Code, rec.Body.String())
	}
}

func TestApplyRoster_FailedCommandRollsBack(t *testing.T) {
	h := newTestHandler(t)

	// 第二条命令引用不存在的护士，失败时第一条命令的结果也不返回
	rec := postJSON(t, h.ApplyRoster, ApplyRosterRequest{
		WardID: testWardID,
		Nurses: []NurseInput{headNurseInput(1, "王护士长")},
		Commands: []RosterCommand{
			{Type: "add_temporaries", Count: 1},
			{Type: "remove", MemberIDs: []int64{12345}},
		},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("移除不存在的护士应返回 404: %d (body=%s)", rec.Code, rec.Body.String())
	}
}

func TestApplyRoster_InvalidCommandType(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.ApplyRoster, ApplyRosterRequest{
		WardID:   testWardID,
		Nurses:   []NurseInput{headNurseInput(1, "王护士长")},
		Commands: []RosterCommand{{Type: "explode"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("非法命令类型应返回 400: %d (body=%s)", rec.Code, rec.Body.String())
	}
}
