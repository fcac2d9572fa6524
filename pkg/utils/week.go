package utils

import (
	"fmt"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// WorkDays 每周订餐天数（周一至周五）
const WorkDays = 5

// ==================== 日期工具 ====================

// DateOf 取 t 所在日历日，统一存为 UTC 零点
// 调用方负责先把 t 转换到业务时区
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式错误，应为 %s: %w", DateLayout, err)
	}
	return t, nil
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ==================== ISO 周 ====================

// WeekStartOf 返回 t 所在 ISO 周的周一
func WeekStartOf(t time.Time) time.Time {
	date := DateOf(t)
	offset := (int(date.Weekday()) + 6) % 7 // 周一=0 ... 周日=6
	return date.AddDate(0, 0, -offset)
}

// NextMonday 目标周：now + 1 周所在 ISO 周的周一
func NextMonday(now time.Time) time.Time {
	return WeekStartOf(now.AddDate(0, 0, 7))
}

// Weekdays 返回目标周周一至周五的日期
func Weekdays(weekStart time.Time) []time.Time {
	start := WeekStartOf(weekStart)
	days := make([]time.Time, WorkDays)
	for i := 0; i < WorkDays; i++ {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// WeekEnd 目标周最后一个工作日（周五）
func WeekEnd(weekStart time.Time) time.Time {
	return WeekStartOf(weekStart).AddDate(0, 0, WorkDays-1)
}

// InWeek 判断 day 是否为目标周的工作日
func InWeek(day, weekStart time.Time) bool {
	d := DateOf(day)
	start := WeekStartOf(weekStart)
	return !d.Before(start) && d.Before(start.AddDate(0, 0, WorkDays))
}

// ==================== 订餐窗口 ====================

// IsOrderingOpen 判断当前是否处于下周的订餐窗口
// 窗口：周四全天、周五全天、周六 12:00 之前。now 需为业务时区时间
func IsOrderingOpen(now time.Time) bool {
	switch now.Weekday() {
	case time.Thursday, time.Friday:
		return true
	case time.Saturday:
		return now.Hour() < 12
	default:
		return false
	}
}

// OrderingWindow 返回目标周订餐窗口的开始与截止时间（业务时区）
func OrderingWindow(weekStart time.Time, loc *time.Location) (opensAt, closesAt time.Time) {
	y, m, d := WeekStartOf(weekStart).Date()
	monday := time.Date(y, m, d, 0, 0, 0, 0, loc)
	// 上周四 00:00 至 上周六 12:00
	opensAt = monday.AddDate(0, 0, -4)
	closesAt = monday.AddDate(0, 0, -2).Add(12 * time.Hour)
	return opensAt, closesAt
}

// ==================== 时钟 ====================

// Clock 时间源
type Clock interface {
	Now() time.Time
}

type zoneClock struct {
	loc *time.Location
}

// NewClock 创建业务时区时钟
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return zoneClock{loc: loc}
}

func (c zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// FixedClock 固定时间（用于测试与补单命令）
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
