package view

import (
	"fmt"
	"io"
	"strings"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/dto"
)

// LoadingLine 取数中的提示行
const LoadingLine = "Loading..."

var filterLabels = []struct {
	filter aggregate.Filter
	label  string
}{
	{aggregate.FilterAll, "All"},
	{aggregate.FilterUpcoming, "Upcoming"},
	{aggregate.FilterPast, "Past"},
}

// textWriter 记录第一个写入错误
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) linef(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format+"\n", args...)
}

// RenderSchedule 以文本卡片输出日程视图
//
// 取数中且无旧数据时只输出加载行；有旧数据时加载行之后照常输出。
func RenderSchedule(w io.Writer, v *dto.ScheduleViewResponse, loading bool) error {
	t := &textWriter{w: w}
	t.linef("%s", v.Title)
	t.linef("%s", strings.Repeat("=", len(v.Title)))

	if v.ShowFilters {
		parts := make([]string, 0, len(filterLabels))
		for _, f := range filterLabels {
			if string(f.filter) == v.Filter {
				parts = append(parts, "["+f.label+"]")
			} else {
				parts = append(parts, f.label)
			}
		}
		t.linef("Filter: %s", strings.Join(parts, "  "))
	}

	if loading {
		t.linef("%s", LoadingLine)
		if v.Empty {
			return t.err
		}
	}
	if v.Empty {
		t.linef("%s", v.EmptyMessage)
		return t.err
	}

	for _, g := range v.Groups {
		if v.ShowDateHeaders {
			t.linef("")
			t.linef("-- %s --", g.Heading)
		}
		for _, c := range g.Items {
			t.linef("")
			if c.Badge != "" {
				t.linef("  %s  [%s]", c.Title, c.Badge)
			} else {
				t.linef("  %s", c.Title)
			}
			t.linef("    %s", c.TimeRange)
			t.linef("    %s", c.Subtitle)
			if c.Location != "" {
				t.linef("    @ %s", c.Location)
			}
		}
	}
	return t.err
}

// RenderTimetable 以文本卡片输出课表视图
func RenderTimetable(w io.Writer, v *dto.TimetableViewResponse, loading bool) error {
	t := &textWriter{w: w}
	t.linef("%s", v.Title)
	t.linef("%s", strings.Repeat("=", len(v.Title)))

	if loading {
		t.linef("%s", LoadingLine)
		if v.Empty {
			return t.err
		}
	}
	if v.Empty {
		t.linef("%s", v.EmptyMessage)
		return t.err
	}

	for _, g := range v.Groups {
		t.linef("")
		if g.Recognized {
			t.linef("-- %s --", g.Heading)
		} else {
			t.linef("-- %s (unrecognized day) --", g.Heading)
		}
		for _, e := range g.Entries {
			t.linef("  %s  %s", e.SubjectCode, e.SubjectName)
			t.linef("    %s", e.TimeRange)
			t.linef("    %s", e.Faculty)
			if e.Venue != "" {
				t.linef("    @ %s", e.Venue)
			}
		}
	}
	return t.err
}
