package aggregate

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"schedule-board/backend/internal/model"
)

// WeekOrder 课表分组的固定星期顺序
var WeekOrder = []model.Weekday{
	model.Monday,
	model.Tuesday,
	model.Wednesday,
	model.Thursday,
	model.Friday,
	model.Saturday,
	model.Sunday,
}

var weekRank = func() map[model.Weekday]int {
	m := make(map[model.Weekday]int, len(WeekOrder))
	for i, d := range WeekOrder {
		m[d] = i
	}
	return m
}()

// ParseWeekday 规范化星期代码（去空白、转大写），返回是否为已知代码
func ParseWeekday(s string) (model.Weekday, bool) {
	d := model.Weekday(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := weekRank[d]
	return d, ok
}

// WeekdayOf 时刻对应的星期代码（按 t 自身的时区）
func WeekdayOf(t time.Time) model.Weekday {
	// time.Sunday == 0
	return WeekOrder[(int(t.Weekday())+6)%7]
}

// ClockMinutes 解析 HH:MM 或 HH:MM:SS 为当日分钟数
func ClockMinutes(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// DayGroup 同一星期的课表条目
// Recognized=false 表示星期代码不在 MON…SUN 之内
type DayGroup struct {
	Day        model.Weekday
	Recognized bool
	Entries    []model.TimetableEntry
}

// TimetableResult 课表聚合结果
type TimetableResult struct {
	Groups       []DayGroup
	Unrecognized []string
}

// Empty 无任何条目
func (r TimetableResult) Empty() bool { return len(r.Groups) == 0 }

// AggregateTimetable 按星期分组
//
//   - 分组顺序固定为 MON → SUN
//   - 组内按 time_start 稳定排序（与日程视图保持一致）
//   - 未知星期代码单独成组，排在 SUN 之后，按代码排序
func AggregateTimetable(entries []model.TimetableEntry) TimetableResult {
	var result TimetableResult
	index := make(map[model.Weekday]int)

	for _, e := range entries {
		day, ok := ParseWeekday(string(e.Day))
		i, seen := index[day]
		if !seen {
			i = len(result.Groups)
			index[day] = i
			result.Groups = append(result.Groups, DayGroup{Day: day, Recognized: ok})
			if !ok {
				result.Unrecognized = append(result.Unrecognized, string(e.Day))
			}
		}
		result.Groups[i].Entries = append(result.Groups[i].Entries, e)
	}

	sort.SliceStable(result.Groups, func(i, j int) bool {
		gi, gj := result.Groups[i], result.Groups[j]
		if gi.Recognized != gj.Recognized {
			return gi.Recognized
		}
		if gi.Recognized {
			return weekRank[gi.Day] < weekRank[gj.Day]
		}
		return gi.Day < gj.Day
	})

	for i := range result.Groups {
		sortByStart(result.Groups[i].Entries)
	}
	sort.Strings(result.Unrecognized)

	return result
}

// sortByStart 无法解析的时间排在可解析时间之后，保持原有相对顺序
func sortByStart(entries []model.TimetableEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		mi, okI := ClockMinutes(entries[i].TimeStart)
		mj, okJ := ClockMinutes(entries[j].TimeStart)
		if okI != okJ {
			return okI
		}
		return okI && mi < mj
	})
}

// Materialize 将课表条目落到指定日期（loc 下的墙上时间），得到绝对时刻
func Materialize(e model.TimetableEntry, date time.Time, loc *time.Location) (model.BookedSlot, bool) {
	if loc == nil {
		loc = time.Local
	}
	startMin, ok := ClockMinutes(e.TimeStart)
	if !ok {
		return model.BookedSlot{}, false
	}
	endMin, ok := ClockMinutes(e.TimeEnd)
	if !ok {
		return model.BookedSlot{}, false
	}
	y, m, d := date.Date()

	slot := model.BookedSlot{
		ID:          e.EntryID,
		Type:        model.SlotTypeTimetable,
		StartTime:   time.Date(y, m, d, startMin/60, startMin%60, 0, 0, loc),
		EndTime:     time.Date(y, m, d, endMin/60, endMin%60, 0, 0, loc),
		SubjectCode: e.SubjectCode,
		SubjectName: e.SubjectName,
		FacultyName: e.FacultyName,
		Venue:       e.Venue,
	}
	if e.ResourceID != nil {
		slot.ResourceID = *e.ResourceID
	}
	return slot, true
}
