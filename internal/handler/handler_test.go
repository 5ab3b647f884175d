package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhiban/zhiban/pkg/calendar"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/readiness"
	"github.com/zhiban/zhiban/pkg/stats"
	"github.com/zhiban/zhiban/pkg/validator"
)

// fakeProvider 测试用节假日数据源
type fakeProvider struct {
	days map[int][]int // month -> holidays
	err  error
}

func (f *fakeProvider) Holidays(_ context.Context, _ int, month int) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.days[month], nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := New(calendar.NewCalculator(&fakeProvider{days: map[int][]int{10: {1, 2, 3}}}))
	if err != nil {
		t.Fatalf("创建处理器失败: %v", err)
	}
	return h
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("解析响应失败: %v (body=%s)", err, rec.Body.String())
	}
}

const testWardID = "a5b3c6d8-0000-4000-8000-000000000001"

func testRules(d, e, n int) model.RuleSet {
	rules := model.DefaultRuleSet()
	rules.WeekdayDay.Value = d
	rules.WeekdayEvening.Value = e
	rules.WeekdayNight.Value = n
	return rules
}

func rotatingInputs(count int) []NurseInput {
	inputs := make([]NurseInput, 0, count)
	for i := 0; i < count; i++ {
		inputs = append(inputs, NurseInput{
			MemberID: int64(i + 1),
			Shifts:   []string{"N", "E", "D"},
		})
	}
	return inputs
}

func TestEvaluateStaffing(t *testing.T) {
	h := newTestHandler(t)

	nurses := append(rotatingInputs(5), NurseInput{MemberID: 100, Shifts: []string{"M"}})
	rec := postJSON(t, h.EvaluateStaffing, EvaluateRequest{
		WardID: testWardID,
		Nurses: nurses,
		Rules:  testRules(3, 3, 2),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码不正确: %d (body=%s)", rec.Code, rec.Body.String())
	}

	var resp EvaluateResponse
	decodeBody(t, rec, &resp)
	if resp.NeededTotal != 8 || resp.CurrentTotal != 5 || resp.AdditionalNeeded != 3 {
		t.Errorf("评估结果不正确: %+v", resp)
	}
	if resp.Sufficient {
		t.Error("缺口 3 时不应判定充足")
	}
	if resp.MidDedicated != 1 {
		t.Errorf("专属班人数不正确: %d", resp.MidDedicated)
	}
}

func TestEvaluateStaffing_InvalidMask(t *testing.T) {
	h := newTestHandler(t)

	// M 与轮转班次组合非法
	rec := postJSON(t, h.EvaluateStaffing, EvaluateRequest{
		WardID: testWardID,
		Nurses: []NurseInput{{MemberID: 1, Shifts: []string{"M", "D"}}},
		Rules:  testRules(3, 3, 2),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("期望 400, 实际: %d", rec.Code)
	}
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["code"] != string(errors.CodeInvalidShiftCombination) {
		t.Errorf("错误码不正确: %v", body["code"])
	}
}

func TestDecideReadiness_ProvisionAndGenerate(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.DecideReadiness, DecideRequest{
		WardID: testWardID,
		Nurses: rotatingInputs(5),
		Rules:  testRules(3, 3, 2),
		Events: []DecisionEvent{
			{Type: "provision", Increment: 3},
			{Type: "generate"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码不正确: %d (body=%s)", rec.Code, rec.Body.String())
	}

	var resp DecideResponse
	decodeBody(t, rec, &resp)
	if resp.State.Phase != readiness.PhaseGenerateRequested {
		t.Errorf("最终状态不正确: %+v", resp.State)
	}
	if !resp.Generated || resp.Forced {
		t.Errorf("生成触发不正确: generated=%v forced=%v", resp.Generated, resp.Forced)
	}
	if resp.RosterSize != 8 {
		t.Errorf("花名册人数不正确: %d", resp.RosterSize)
	}
}

func TestDecideReadiness_GenerateBlocked(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.DecideReadiness, DecideRequest{
		WardID: testWardID,
		Nurses: rotatingInputs(2),
		Rules:  testRules(3, 3, 2),
		Events: []DecisionEvent{{Type: "generate"}},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("人员不足时普通生成应返回 403, 实际: %d", rec.Code)
	}
}

func TestDecideReadiness_ForceGenerate(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.DecideReadiness, DecideRequest{
		WardID: testWardID,
		Nurses: rotatingInputs(2),
		Rules:  testRules(3, 3, 2),
		Events: []DecisionEvent{{Type: "generate", Forced: true}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("强制生成应成功: %d (body=%s)", rec.Code, rec.Body.String())
	}
	var resp DecideResponse
	decodeBody(t, rec, &resp)
	if resp.State.Phase != readiness.PhaseGenerateRequested || !resp.State.Forced {
		t.Errorf("强制生成状态不正确: %+v", resp.State)
	}
}

func TestValidateRules(t *testing.T) {
	h := newTestHandler(t)

	// 合法规则
	rec := postJSON(t, h.ValidateRules, ValidateRulesRequest{Rules: model.DefaultRuleSet()})
	var resp ValidateRulesResponse
	decodeBody(t, rec, &resp)
	if !resp.Valid || resp.WeekdayTotal != 7 {
		t.Errorf("默认规则应合法: %+v", resp)
	}

	// 夜班上下限矛盾
	bad := model.DefaultRuleSet()
	bad.MinConsecutiveNight.Value = 5
	bad.MaxConsecutiveNight.Value = 3
	rec = postJSON(t, h.ValidateRules, ValidateRulesRequest{Rules: bad})
	decodeBody(t, rec, &resp)
	if resp.Valid || resp.Code != errors.CodeInconsistentNightBound {
		t.Errorf("矛盾规则应返回 INCONSISTENT_NIGHT_BOUNDS: %+v", resp)
	}
}

func TestRuleLibrary(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules/library", nil)
	rec := httptest.NewRecorder()
	h.RuleLibrary(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码不正确: %d", rec.Code)
	}

	var resp struct {
		Library []map[string]interface{} `json:"library"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Library) != 9 {
		t.Errorf("规则库应包含 9 条定义, 实际: %d", len(resp.Library))
	}
}

func TestOffDays(t *testing.T) {
	h := newTestHandler(t)

	// 2024年10月：1-3 为节假日（1、2 为工作日，3 为周四）
	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/off-days?year=2024&month=10", nil)
	rec := httptest.NewRecorder()
	h.OffDays(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码不正确: %d (body=%s)", rec.Code, rec.Body.String())
	}

	var resp OffDaysResponse
	decodeBody(t, rec, &resp)
	if resp.DaysInMonth != 31 {
		t.Errorf("10月应有 31 天: %d", resp.DaysInMonth)
	}
	// 周末 8 天（5,6,12,13,19,20,26,27）+ 节假日 3 天，无重叠
	if resp.OffDayCount != 11 {
		t.Errorf("休息日总数不正确: %d", resp.OffDayCount)
	}
	if len(resp.HolidayDays) != 3 {
		t.Errorf("节假日列表不正确: %v", resp.HolidayDays)
	}
}

func TestOffDays_InvalidMonth(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/off-days?year=2024&month=13", nil)
	rec := httptest.NewRecorder()
	h.OffDays(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("非法月份应返回 400, 实际: %d", rec.Code)
	}
}

func TestCheckDuty(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.CheckDuty, CheckDutyRequest{
		Rules: model.DefaultRuleSet(), // max_shift=5
		Table: []validator.NurseDuties{
			{MemberID: 1, Name: "张三", Duties: "DDEDDED" + "OO"},
			{MemberID: 2, Name: "李四", Duties: "OODDEOO"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码不正确: %d (body=%s)", rec.Code, rec.Body.String())
	}

	var resp CheckDutyResponse
	decodeBody(t, rec, &resp)
	if resp.Valid || len(resp.Violations) != 1 {
		t.Fatalf("应检出 1 条违规: %+v", resp)
	}
	if resp.Violations[0].MemberID != 1 {
		t.Errorf("违规护士不正确: %+v", resp.Violations[0])
	}
}

func TestCoverage(t *testing.T) {
	h := newTestHandler(t)

	rules := testRules(1, 0, 0)
	rules.WeekendDay.Value = 0
	rules.WeekendEvening.Value = 0
	rules.WeekendNight.Value = 0
	rules.WeekdayEvening.Value = 0
	rules.WeekdayNight.Value = 0

	// 2024年3月：21 个工作日各需 1 个白班
	var cells []stats.DutyCell
	for day := 1; day <= 31; day++ {
		cells = append(cells, stats.DutyCell{MemberID: 1, Day: day, Shift: "D"})
	}

	rec := postJSON(t, h.Coverage, CoverageRequest{
		WardID: testWardID,
		Year:   2024,
		Month:  3,
		Rules:  rules,
		Cells:  cells,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码不正确: %d (body=%s)", rec.Code, rec.Body.String())
	}

	var resp stats.CoverageMetrics
	decodeBody(t, rec, &resp)
	if resp.OverallCoverage != 100 {
		t.Errorf("全排满应为 100%% 覆盖: %.1f", resp.OverallCoverage)
	}
	if len(resp.Understaffed) != 0 {
		t.Errorf("不应有缺员: %+v", resp.Understaffed)
	}
}
