package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/pkg/clock"
)

// ── ICS 课表源 ──────────────────────────────────────────────
//
// 将外部 iCalendar 订阅（或本服务导出的 .ics）解析为周课表：
//   - DTSTART 决定星期与开始时间，DTEND / DURATION 决定结束时间
//   - 只接受无 RRULE 或 FREQ=WEEKLY 的事件
//   - SUMMARY 形如 "CS101 - Intro"，LOCATION 为场地，
//     DESCRIPTION 以 "Faculty: " 开头时作为教师名
//   - 同课程同时段的重复事件合并为一条
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second

	// SummarySeparator 课程代码与课程名之间的分隔
	SummarySeparator = " - "
	// FacultyPrefix DESCRIPTION 中教师名的前缀
	FacultyPrefix = "Faculty: "
)

// OpenICS 打开 ICS 源：http(s):// 或 webcal:// 地址，否则视为本地文件路径
func OpenICS(ctx context.Context, source string) (io.ReadCloser, error) {
	u := source
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("打开 ICS 文件失败: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseTimetableICS 解析 ICS 内容为周课表条目，按星期与开始时间排序
func ParseTimetableICS(reader io.Reader, loc *time.Location) ([]model.TimetableEntry, error) {
	if loc == nil {
		loc = time.Local
	}
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	type key struct {
		code, name string
		day        model.Weekday
		start, end string
	}
	seen := make(map[key]bool)

	var entries []model.TimetableEntry
	for _, evt := range cal.Events() {
		e, ok := parseVEvent(evt, loc)
		if !ok {
			continue
		}
		k := key{e.SubjectCode, e.SubjectName, e.Day, e.TimeStart, e.TimeEnd}
		if seen[k] {
			continue
		}
		seen[k] = true
		entries = append(entries, e)
	}

	rank := make(map[model.Weekday]int, len(aggregate.WeekOrder))
	for i, d := range aggregate.WeekOrder {
		rank[d] = i
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return rank[entries[i].Day] < rank[entries[j].Day]
		}
		return entries[i].TimeStart < entries[j].TimeStart
	})
	return entries, nil
}

func parseVEvent(evt *ics.VEvent, loc *time.Location) (model.TimetableEntry, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return model.TimetableEntry{}, false
	}

	if rrule := evt.GetProperty(ics.ComponentPropertyRrule); rrule != nil && ruleFreq(rrule.Value) != "WEEKLY" {
		return model.TimetableEntry{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return model.TimetableEntry{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		dur := evt.GetProperty(ics.ComponentPropertyDuration)
		if dur == nil {
			return model.TimetableEntry{}, false
		}
		d, ok := parseICSDuration(dur.Value)
		if !ok {
			return model.TimetableEntry{}, false
		}
		dtEnd = dtStart.Add(d)
	}

	code, name := splitSummary(strings.TrimSpace(summary.Value))
	e := model.TimetableEntry{
		Day:         aggregate.WeekdayOf(dtStart),
		TimeStart:   dtStart.Format("15:04"),
		TimeEnd:     dtEnd.Format("15:04"),
		SubjectCode: code,
		SubjectName: name,
	}
	if uid := evt.GetProperty(ics.ComponentPropertyUniqueId); uid != nil {
		e.EntryID = uid.Value
	}
	if location := evt.GetProperty(ics.ComponentPropertyLocation); location != nil {
		e.Venue = location.Value
	}
	if desc := evt.GetProperty(ics.ComponentPropertyDescription); desc != nil && strings.HasPrefix(desc.Value, FacultyPrefix) {
		e.FacultyName = strings.TrimPrefix(desc.Value, FacultyPrefix)
	}
	return e, true
}

func splitSummary(s string) (code, name string) {
	if i := strings.Index(s, SummarySeparator); i > 0 {
		return s[:i], s[i+len(SummarySeparator):]
	}
	return s, s
}

// ruleFreq 取 RRULE 中的 FREQ
func ruleFreq(value string) string {
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "FREQ") {
			return strings.ToUpper(kv[1])
		}
	}
	return ""
}

// parseICSDuration 解析 PT1H30M / PT90M 形式的时长
func parseICSDuration(v string) (time.Duration, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if !strings.HasPrefix(v, "PT") {
		return 0, false
	}
	d, err := time.ParseDuration(strings.ToLower(strings.TrimPrefix(v, "PT")))
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少属性 %s", propName)
	}
	val := prop.Value

	layouts := []string{
		"20060102T150405Z",
		"20060102T150405",
	}

	// TZID 参数
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}

// ICSProvider 以 ICS 订阅作为课表来源，没有预约数据
type ICSProvider struct {
	source string
	clock  clock.Clock
	loc    *time.Location
}

// NewICSProvider source 为 URL 或文件路径
func NewICSProvider(source string, clk clock.Clock, loc *time.Location) *ICSProvider {
	if loc == nil {
		loc = time.Local
	}
	return &ICSProvider{source: source, clock: clk, loc: loc}
}

func (p *ICSProvider) load(ctx context.Context) ([]model.TimetableEntry, error) {
	rc, err := OpenICS(ctx, p.source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseTimetableICS(rc, p.loc)
}

func (p *ICSProvider) GetBookings(ctx context.Context) ([]model.Booking, error) {
	return []model.Booking{}, nil
}

func (p *ICSProvider) GetAllBookedTimeSlots(ctx context.Context, date string) ([]model.BookedSlot, error) {
	day, err := time.ParseInLocation(aggregate.DateLayout, date, p.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", aggregate.ErrInvalidDate, date)
	}
	entries, err := p.load(ctx)
	if err != nil {
		return nil, fetchError(OpBookedSlots, err)
	}

	weekday := aggregate.WeekdayOf(day)
	var slots []model.BookedSlot
	for _, e := range entries {
		if e.Day != weekday {
			continue
		}
		if slot, ok := aggregate.Materialize(e, day, p.loc); ok {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (p *ICSProvider) GetTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	entries, err := p.load(ctx)
	if err != nil {
		return nil, fetchError(OpTimetable, err)
	}
	return entries, nil
}

func (p *ICSProvider) GetTodayTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	entries, err := p.load(ctx)
	if err != nil {
		return nil, fetchError(OpTodayTimetable, err)
	}
	today := aggregate.WeekdayOf(p.clock.Now().In(p.loc))
	out := make([]model.TimetableEntry, 0, len(entries))
	for _, e := range entries {
		if e.Day == today {
			out = append(out, e)
		}
	}
	return out, nil
}
