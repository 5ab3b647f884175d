// Package calendar 提供排班日历计算：周末、节假日与默认休息日
package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
)

// HolidayProvider 节假日数据源
// 返回某年某月的节假日日期（1..月末），不保证有序，可能重复
type HolidayProvider interface {
	Holidays(ctx context.Context, year, month int) ([]int, error)
}

// Day 单日记录
type Day struct {
	Day       int          `json:"day"`
	DayOfWeek time.Weekday `json:"day_of_week"` // 周日=0，与前端 Date.getDay() 约定一致
	IsWeekend bool         `json:"is_weekend"`
	IsHoliday bool         `json:"is_holiday"`
}

// Month 月份日历（按天有序）
type Month struct {
	Year  int   `json:"year"`
	Month int   `json:"month"` // 1-12
	Days  []Day `json:"days"`
}

// OffDayCount 默认休息日数（周末与节假日的并集大小）
func (m Month) OffDayCount() int {
	count := 0
	for _, d := range m.Days {
		if d.IsWeekend || d.IsHoliday {
			count++
		}
	}
	return count
}

// checkMonth 校验月份取值
func checkMonth(month int) error {
	if month < 1 || month > 12 {
		return errors.InvalidMonth(month)
	}
	return nil
}

// DaysInMonth 返回某月天数，正确处理闰年
func DaysInMonth(year, month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	// 下月第0天即本月最后一天
	t := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return t.Day(), nil
}

// WeekendDays 返回某月全部周末日期（升序）
func WeekendDays(year, month int) ([]int, error) {
	total, err := DaysInMonth(year, month)
	if err != nil {
		return nil, err
	}

	var days []int
	for day := 1; day <= total; day++ {
		wd := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday()
		if wd == time.Sunday || wd == time.Saturday {
			days = append(days, day)
		}
	}
	return days, nil
}

// Calculator 日历计算器
type Calculator struct {
	provider HolidayProvider
}

// NewCalculator 创建日历计算器
func NewCalculator(provider HolidayProvider) *Calculator {
	return &Calculator{provider: provider}
}

// HolidayDays 返回某月节假日集合（升序去重）
// 数据源失败时软降级为空集合，不向上传播错误
func (c *Calculator) HolidayDays(ctx context.Context, year, month int) ([]int, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	if c.provider == nil {
		return nil, nil
	}

	raw, err := c.provider.Holidays(ctx, year, month)
	if err != nil {
		logger.Warn().
			Int("year", year).
			Int("month", month).
			Err(err).
			Msg("节假日数据获取失败，按无节假日处理")
		return nil, nil
	}

	total, _ := DaysInMonth(year, month)
	seen := make(map[int]bool)
	var days []int
	for _, d := range raw {
		if d < 1 || d > total || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

// DefaultOffDays 返回默认休息日数：|周末 ∪ 节假日|
// 既是周末又是节假日的日期只计一次
func (c *Calculator) DefaultOffDays(ctx context.Context, year, month int) (int, error) {
	m, err := c.Month(ctx, year, month)
	if err != nil {
		return 0, err
	}
	return m.OffDayCount(), nil
}

// Month 构建某月完整日历
func (c *Calculator) Month(ctx context.Context, year, month int) (Month, error) {
	total, err := DaysInMonth(year, month)
	if err != nil {
		return Month{}, err
	}

	holidays, err := c.HolidayDays(ctx, year, month)
	if err != nil {
		return Month{}, err
	}
	holidaySet := make(map[int]bool, len(holidays))
	for _, d := range holidays {
		holidaySet[d] = true
	}

	days := make([]Day, 0, total)
	for day := 1; day <= total; day++ {
		wd := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday()
		days = append(days, Day{
			Day:       day,
			DayOfWeek: wd,
			IsWeekend: wd == time.Sunday || wd == time.Saturday,
			IsHoliday: holidaySet[day],
		})
	}

	return Month{Year: year, Month: month, Days: days}, nil
}
