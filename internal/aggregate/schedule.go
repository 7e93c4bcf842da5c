package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"schedule-board/backend/internal/model"
)

// DateLayout 日期过滤与分组键格式
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate   = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidFilter = errors.New("时间过滤条件无效，应为 all / upcoming / past")
)

// Filter 日程时间过滤
type Filter string

const (
	FilterAll      Filter = "all"
	FilterUpcoming Filter = "upcoming"
	FilterPast     Filter = "past"
)

// ParseFilter 解析过滤条件，空字符串视为 all
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterUpcoming:
		return FilterUpcoming, nil
	case FilterPast:
		return FilterPast, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// ValidateDate 校验 YYYY-MM-DD，空字符串合法（表示不按日期过滤）
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// CalendarDate 返回时刻在 loc 下的日历日期
func CalendarDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// Item 合并后的日程条目
// Type 为 booking 时 Booking 非空；为 timetable 时 Slot 非空
type Item struct {
	Type      model.SlotType
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Booking   *model.Booking
	Slot      *model.BookedSlot
}

// Key 渲染用唯一键
func (it Item) Key() string {
	return string(it.Type) + "-" + it.ID
}

// DateGroup 同一日期下的日程条目
type DateGroup struct {
	Date  string
	Items []Item
}

// ScheduleParams 日程聚合参数
type ScheduleParams struct {
	UserID string
	Date   string
	Filter Filter
}

// DateMode 是否按指定日期过滤
func (p ScheduleParams) DateMode() bool { return p.Date != "" }

// ScheduleResult 日程聚合结果
type ScheduleResult struct {
	Params ScheduleParams
	Groups []DateGroup
}

// Empty 无任何条目
func (r ScheduleResult) Empty() bool { return len(r.Groups) == 0 }

// Len 条目总数
func (r ScheduleResult) Len() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Items)
	}
	return n
}

// FilterByUser 保留指定用户的预约，保持原有相对顺序；userID 为空时原样返回副本
func FilterByUser(bookings []model.Booking, userID string) []model.Booking {
	out := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if userID != "" && b.UserID != userID {
			continue
		}
		out = append(out, b)
	}
	return out
}

// AggregateSchedule 过滤、合并、排序并按日期分组
//
// 流程：
//  1. 按用户过滤
//  2. 指定日期时：仅保留开始时刻落在该日的预约，以及落在该日的 type=timetable 占用时段
//  3. 未指定日期时：应用 all / upcoming / past（两种过滤模式互斥）
//  4. 合并并按开始时刻稳定排序
//  5. 分组：指定日期 → 单一分组；否则按各自的日历日期
//  6. 分组按日期升序
func AggregateSchedule(bookings []model.Booking, slots []model.BookedSlot, p ScheduleParams, now time.Time, loc *time.Location) (ScheduleResult, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := ValidateDate(p.Date); err != nil {
		return ScheduleResult{}, err
	}
	filter, err := ParseFilter(string(p.Filter))
	if err != nil {
		return ScheduleResult{}, err
	}
	p.Filter = filter

	kept := FilterByUser(bookings, p.UserID)

	items := make([]Item, 0, len(kept)+len(slots))
	for _, b := range kept {
		if p.DateMode() {
			if CalendarDate(b.StartTime, loc) != p.Date {
				continue
			}
		} else if !matchTemporal(b.StartTime, now, filter) {
			continue
		}
		booking := b
		items = append(items, Item{
			Type:      model.SlotTypeBooking,
			ID:        b.BookingID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Booking:   &booking,
		})
	}

	// 占用时段只在指定日期时参与合并
	if p.DateMode() {
		for _, s := range slots {
			if s.Type != model.SlotTypeTimetable || CalendarDate(s.StartTime, loc) != p.Date {
				continue
			}
			slot := s
			items = append(items, Item{
				Type:      model.SlotTypeTimetable,
				ID:        s.ID,
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
				Slot:      &slot,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartTime.Before(items[j].StartTime)
	})

	result := ScheduleResult{Params: p}
	if len(items) == 0 {
		return result, nil
	}

	if p.DateMode() {
		result.Groups = []DateGroup{{Date: p.Date, Items: items}}
		return result, nil
	}

	index := make(map[string]int)
	for _, it := range items {
		key := CalendarDate(it.StartTime, loc)
		i, ok := index[key]
		if !ok {
			i = len(result.Groups)
			index[key] = i
			result.Groups = append(result.Groups, DateGroup{Date: key})
		}
		result.Groups[i].Items = append(result.Groups[i].Items, it)
	}

	// YYYY-MM-DD 的字典序即时间顺序
	sort.Slice(result.Groups, func(i, j int) bool {
		return result.Groups[i].Date < result.Groups[j].Date
	})

	return result, nil
}

// matchTemporal upcoming 与 past 均为严格比较，恰好等于 now 的条目两者都不包含
func matchTemporal(start, now time.Time, f Filter) bool {
	switch f {
	case FilterUpcoming:
		return start.After(now)
	case FilterPast:
		return start.Before(now)
	default:
		return true
	}
}
