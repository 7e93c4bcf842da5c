package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/provider"
	"schedule-board/backend/pkg/clock"
)

// ── 测试辅助 ──

func setupTestExportService(t *testing.T) (ExportService, *mockProvider, *time.Location) {
	t.Helper()
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	src := newMockProvider()
	clk := clock.NewMockClock(testNow)
	logger := zap.NewNop()
	schedule := NewScheduleViewService(src, clk, shanghai, logger)
	return NewExportService(schedule, src, clk, shanghai, logger), src, shanghai
}

// ── ExportSchedule 测试 ──

func TestExportService_ExportSchedule_Success(t *testing.T) {
	svc, src, _ := setupTestExportService(t)
	src.bookings = []model.Booking{
		testBooking("b1", "u1", time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC), model.BookingStatusConfirmed),
		testBooking("b2", "u2", time.Date(2024, 5, 3, 2, 30, 0, 0, time.UTC), model.BookingStatusPending),
	}

	buf, filename, err := svc.ExportSchedule(context.Background(), &dto.ScheduleViewQuery{})
	require.NoError(t, err)
	assert.Equal(t, "schedule_all_20240502.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, DefaultScheduleTitle, rows[0][0])
	assert.Equal(t, scheduleHeaders, rows[1])
	assert.Equal(t, []string{"Wed, May 1, 2024", "09:00 - 10:00", "booking", "Room b1", "Confirmed", "Booked by: User u1", "Room b1"}, rows[2])
	assert.Equal(t, "Fri, May 3, 2024", rows[3][0])
	assert.Equal(t, "10:30 - 11:30", rows[3][1])
}

func TestExportService_ExportSchedule_DateFilename(t *testing.T) {
	svc, _, _ := setupTestExportService(t)

	buf, filename, err := svc.ExportSchedule(context.Background(), &dto.ScheduleViewQuery{Date: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, "schedule_2024-05-01_20240502.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Schedule", "A3")
	require.NoError(t, err)
	assert.Equal(t, EmptyScheduleMessage, v)
}

func TestExportService_ExportSchedule_Errors(t *testing.T) {
	svc, src, _ := setupTestExportService(t)

	_, _, err := svc.ExportSchedule(context.Background(), &dto.ScheduleViewQuery{Filter: "later"})
	assert.ErrorIs(t, err, aggregate.ErrInvalidFilter)

	src.err = errors.New("down")
	_, _, err = svc.ExportSchedule(context.Background(), &dto.ScheduleViewQuery{})
	assert.ErrorIs(t, err, ErrScheduleFetchFailed)
}

// ── ExportTimetableICS 测试 ──

func TestExportService_ExportTimetableICS_RoundTrip(t *testing.T) {
	svc, src, loc := setupTestExportService(t)
	src.timetable = []model.TimetableEntry{
		{EntryID: "e1", Day: model.Monday, TimeStart: "08:00:00", TimeEnd: "09:30:00", SubjectCode: "CS101", SubjectName: "Intro", FacultyName: "Dr. Li", Venue: "Hall A"},
		{EntryID: "e2", Day: model.Sunday, TimeStart: "19:00", TimeEnd: "20:00", SubjectCode: "MA201", SubjectName: "Algebra"},
		{EntryID: "e3", Day: "HOL", TimeStart: "10:00", TimeEnd: "11:00", SubjectCode: "XX"},
		{EntryID: "e4", Day: model.Tuesday, TimeStart: "late", TimeEnd: "11:00", SubjectCode: "YY"},
	}

	buf, filename, err := svc.ExportTimetableICS(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "timetable.ics", filename)

	raw := buf.String()
	assert.Contains(t, raw, "RRULE:FREQ=WEEKLY")
	assert.Equal(t, 2, strings.Count(raw, "BEGIN:VEVENT"))

	entries, err := provider.ParseTimetableICS(strings.NewReader(raw), loc)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "e1", entries[0].EntryID)
	assert.Equal(t, model.Monday, entries[0].Day)
	assert.Equal(t, "08:00", entries[0].TimeStart)
	assert.Equal(t, "09:30", entries[0].TimeEnd)
	assert.Equal(t, "CS101", entries[0].SubjectCode)
	assert.Equal(t, "Intro", entries[0].SubjectName)
	assert.Equal(t, "Dr. Li", entries[0].FacultyName)
	assert.Equal(t, "Hall A", entries[0].Venue)

	assert.Equal(t, model.Sunday, entries[1].Day)
	assert.Equal(t, "19:00", entries[1].TimeStart)
}

func TestExportService_ExportTimetableICS_LocalWallClockAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	src := newMockProvider()
	src.timetable = []model.TimetableEntry{
		{EntryID: "e1", Day: model.Monday, TimeStart: "09:00", TimeEnd: "10:30", SubjectCode: "CS101", SubjectName: "Intro"},
	}
	// 2024-03-27 在夏令时切换 (03-31) 之前
	clk := clock.NewMockClock(time.Date(2024, 3, 27, 12, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	svc := NewExportService(NewScheduleViewService(src, clk, berlin, logger), src, clk, berlin, logger)

	buf, _, err := svc.ExportTimetableICS(context.Background())
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "DTSTART;TZID=Europe/Berlin:20240325T090000")
	assert.Contains(t, raw, "DTEND;TZID=Europe/Berlin:20240325T103000")
	assert.Contains(t, raw, "X-WR-TIMEZONE:Europe/Berlin")
	assert.NotContains(t, raw, "DTSTART:20240325T080000Z")

	entries, err := provider.ParseTimetableICS(strings.NewReader(raw), berlin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.Monday, entries[0].Day)
	assert.Equal(t, "09:00", entries[0].TimeStart)
}

func TestICSTZID(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	name, ok := icsTZID(shanghai)
	assert.True(t, ok)
	assert.Equal(t, "Asia/Shanghai", name)

	_, ok = icsTZID(time.UTC)
	assert.False(t, ok)
	_, ok = icsTZID(time.Local)
	assert.False(t, ok)
}

func TestExportService_ExportTimetableICS_FetchFailure(t *testing.T) {
	svc, src, _ := setupTestExportService(t)
	src.err = errors.New("down")

	_, _, err := svc.ExportTimetableICS(context.Background())
	assert.ErrorIs(t, err, ErrTimetableFetchFailed)
}

func TestStartOfWeek(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	// 2024-05-05 周日 23:00 上海
	sunday := time.Date(2024, 5, 5, 23, 0, 0, 0, shanghai)
	assert.Equal(t, time.Date(2024, 4, 29, 0, 0, 0, 0, shanghai), startOfWeek(sunday))

	monday := time.Date(2024, 5, 6, 0, 0, 0, 0, shanghai)
	assert.Equal(t, monday, startOfWeek(monday))
}
