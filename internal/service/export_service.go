package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/provider"
	"schedule-board/backend/pkg/clock"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// ExportService 导出业务接口
//
// 设计说明：
//   - 日程导出为 Excel (.xlsx)，与日程视图使用相同的聚合结果
//   - 课表导出为 iCalendar，每个条目一个每周重复的事件，锚定在本周
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportSchedule 导出日程为 Excel
	ExportSchedule(ctx context.Context, q *dto.ScheduleViewQuery) (*bytes.Buffer, string, error)
	// ExportTimetableICS 导出周课表为 iCalendar
	ExportTimetableICS(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	schedule ScheduleViewService
	src      provider.Provider
	clock    clock.Clock
	loc      *time.Location
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(schedule ScheduleViewService, src provider.Provider, clk clock.Clock, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &exportService{schedule: schedule, src: src, clock: clk, loc: loc, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSchedule — 导出日程为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "Schedule"
//   - 第 1 行标题，第 2 行表头，之后每个条目一行，按日期分组顺序排列
//   - 无条目时写入一行 "No schedule items found"
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

var scheduleHeaders = []string{"Date", "Time", "Type", "Title", "Badge", "Details", "Location"}

func (s *exportService) ExportSchedule(ctx context.Context, q *dto.ScheduleViewQuery) (*bytes.Buffer, string, error) {
	res, err := s.schedule.Aggregate(ctx, aggregate.ScheduleParams{
		UserID: q.UserID,
		Date:   q.Date,
		Filter: aggregate.Filter(q.Filter),
	})
	if err != nil {
		return nil, "", err
	}

	title := q.Title
	if title == "" {
		title = DefaultScheduleTitle
	}
	view := BuildScheduleView(res, title, false, s.loc)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Schedule"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	widths := []float64{18, 14, 11, 20, 16, 36, 20}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(colName(len(scheduleHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range scheduleHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(scheduleHeaders)-1), 2), headerStyle)

	// 数据行
	row := 3
	if view.Empty {
		f.SetCellValue(sheetName, cell("A", row), EmptyScheduleMessage)
	}
	for _, g := range view.Groups {
		for _, c := range g.Items {
			values := []string{g.Heading, c.TimeRange, c.Type, c.Title, c.Badge, c.Subtitle, c.Location}
			for i, v := range values {
				f.SetCellValue(sheetName, cell(colName(i), row), v)
			}
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	scope := view.Filter
	if view.Date != "" {
		scope = view.Date
	}
	filename := fmt.Sprintf("schedule_%s_%s.xlsx", scope, s.clock.Now().In(s.loc).Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportTimetableICS — 导出周课表为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个条目落到本周（周一起）对应的日期，附 RRULE:FREQ=WEEKLY；
// 星期代码未知或时间无法解析的条目跳过并记录日志。
// 时刻以 TZID 标注的本地时间写出，时区为 UTC 或 Local 时写 UTC。

func (s *exportService) ExportTimetableICS(ctx context.Context) (*bytes.Buffer, string, error) {
	entries, err := s.src.GetTimetable(ctx)
	if err != nil {
		s.logger.Error("获取课表数据失败", zap.Error(err))
		return nil, "", fmt.Errorf("%w: %w", ErrTimetableFetchFailed, err)
	}

	now := s.clock.Now().In(s.loc)
	monday := startOfWeek(now)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//schedule-board//timetable//EN")
	tzid, zoned := icsTZID(s.loc)
	if zoned {
		cal.SetXWRTimezone(tzid)
	}

	skipped := 0
	for _, e := range entries {
		day, ok := aggregate.ParseWeekday(string(e.Day))
		if !ok {
			skipped++
			continue
		}
		e.Day = day
		slot, ok := aggregate.Materialize(e, monday.AddDate(0, 0, weekIndex(day)), s.loc)
		if !ok {
			skipped++
			continue
		}

		uid := e.EntryID
		if uid == "" {
			uid = uuid.NewString()
		}
		event := cal.AddEvent(uid)
		event.SetDtStampTime(now)
		// RRULE 按 TZID 的本地墙钟展开
		if zoned {
			tz := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{tzid}}
			event.SetProperty(ics.ComponentPropertyDtStart, slot.StartTime.In(s.loc).Format(icsLocalLayout), tz)
			event.SetProperty(ics.ComponentPropertyDtEnd, slot.EndTime.In(s.loc).Format(icsLocalLayout), tz)
		} else {
			event.SetStartAt(slot.StartTime)
			event.SetEndAt(slot.EndTime)
		}
		event.SetSummary(e.SubjectCode + provider.SummarySeparator + e.SubjectName)
		if e.Venue != "" {
			event.SetLocation(e.Venue)
		}
		if e.FacultyName != "" {
			event.SetDescription(provider.FacultyPrefix + e.FacultyName)
		}
		event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
	}

	if skipped > 0 {
		s.logger.Warn("部分课表条目无法导出", zap.Int("skipped", skipped))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "timetable.ics", nil
}

// ── 辅助函数 ──

const icsLocalLayout = "20060102T150405"

// icsTZID 可写入 TZID 的 IANA 时区名；Local / UTC 退回 UTC 时刻
func icsTZID(loc *time.Location) (string, bool) {
	if loc == nil {
		return "", false
	}
	name := loc.String()
	if name == "" || name == "Local" || name == "UTC" {
		return "", false
	}
	return name, true
}

// startOfWeek 所在周周一 00:00（t 的时区）
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -weekIndex(aggregate.WeekdayOf(t)))
}

func weekIndex(day model.Weekday) int {
	for i, d := range aggregate.WeekOrder {
		if d == day {
			return i
		}
	}
	return 0
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
