// Package rules 排班规则库
// 向前端暴露可配置规则的目录：名称、取值范围、默认值与优先级说明
package rules

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, bool
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// RuleDefinition 规则定义
type RuleDefinition struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Prioritized bool        `json:"prioritized"` // 是否支持配置优先级
	Params      []RuleParam `json:"params"`
}

// LibraryResponse 规则库响应
type LibraryResponse struct {
	Library []RuleDefinition `json:"library"`
}

// GetLibrary 获取完整的规则库
func GetLibrary() []RuleDefinition {
	return []RuleDefinition{
		{
			Name:        "weekday_day_count",
			DisplayName: "工作日白班人数",
			Category:    "班次人数",
			Description: "工作日每天白班的最低护士人数。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "count", Type: "int", Description: "人数", Default: "3", Min: "0", Max: "50"},
			},
		},
		{
			Name:        "weekday_evening_count",
			DisplayName: "工作日小夜班人数",
			Category:    "班次人数",
			Description: "工作日每天小夜班的最低护士人数。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "count", Type: "int", Description: "人数", Default: "2", Min: "0", Max: "50"},
			},
		},
		{
			Name:        "weekday_night_count",
			DisplayName: "工作日大夜班人数",
			Category:    "班次人数",
			Description: "工作日每天大夜班的最低护士人数。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "count", Type: "int", Description: "人数", Default: "2", Min: "0", Max: "50"},
			},
		},
		{
			Name:        "weekend_day_count",
			DisplayName: "休息日白班人数",
			Category:    "班次人数",
			Description: "周末及法定节假日每天白班的最低护士人数。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "count", Type: "int", Description: "人数", Default: "2", Min: "0", Max: "50"},
			},
		},
		{
			Name:        "weekend_evening_count",
			DisplayName: "休息日小夜班人数",
			Category:    "班次人数",
			Description: "周末及法定节假日每天小夜班的最低护士人数。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "count", Type: "int", Description: "人数", Default: "2", Min: "0", Max: "50"},
			},
		},
		{
			Name:        "weekend_night_count",
			DisplayName: "休息日大夜班人数",
			Category:    "班次人数",
			Description: "周末及法定节假日每天大夜班的最低护士人数。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "count", Type: "int", Description: "人数", Default: "2", Min: "0", Max: "50"},
			},
		},
		{
			Name:        "max_consecutive_shift",
			DisplayName: "最大连续上班天数",
			Category:    "休息保障",
			Description: "限制护士连续上班的最大天数，超过则排班表判定违规。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "days", Type: "int", Description: "天数", Default: "5", Min: "1", Max: "14"},
			},
		},
		{
			Name:        "max_consecutive_night",
			DisplayName: "最大连续夜班天数",
			Category:    "休息保障",
			Description: "限制护士连续大夜班的最大天数，防止过度疲劳。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "days", Type: "int", Description: "天数", Default: "3", Min: "1", Max: "7"},
			},
		},
		{
			Name:        "min_consecutive_night",
			DisplayName: "最小连续夜班天数",
			Category:    "休息保障",
			Description: "大夜班成段安排的最小天数，避免单独一晚的碎片夜班。不得超过最大连续夜班天数。",
			Prioritized: true,
			Params: []RuleParam{
				{Name: "days", Type: "int", Description: "天数", Default: "2", Min: "1", Max: "7"},
			},
		},
	}
}
