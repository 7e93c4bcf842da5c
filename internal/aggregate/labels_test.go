package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"schedule-board/backend/internal/model"
)

func TestLabels(t *testing.T) {
	assert.Equal(t, "Confirmed", StatusLabel(model.BookingStatusConfirmed))
	assert.Equal(t, "", StatusLabel(""))
	assert.Equal(t, "destructive", StatusTone(model.BookingStatusCancelled))
	assert.Equal(t, "default", StatusTone("archived"))

	assert.Equal(t, "Thursday", DayName(model.Thursday))
	assert.Equal(t, "XYZ", DayName("XYZ"))

	assert.Equal(t, "Wed, May 1, 2024", DateHeading("2024-05-01"))
	assert.Equal(t, "garbage", DateHeading("garbage"))

	shanghai, _ := time.LoadLocation("Asia/Shanghai")
	assert.Equal(t, "16:05", ClockLabel(time.Date(2024, 5, 1, 8, 5, 0, 0, time.UTC), shanghai))

	assert.Equal(t, "09:30", WallClockLabel("09:30:00"))
	assert.Equal(t, "09:30", WallClockLabel("09:30"))
	assert.Equal(t, "930", WallClockLabel("930"))

	b := &model.Booking{UserName: "Alice"}
	assert.Equal(t, "Booked by: Alice", BookingSubtitle(b, false))
	assert.Equal(t, "Booked for: No purpose specified", BookingSubtitle(b, true))
	b.Purpose = "Lab session"
	assert.Equal(t, "Booked for: Lab session", BookingSubtitle(b, true))

	assert.Equal(t, "No faculty assigned", FacultyLabel(""))
	assert.Equal(t, "Dr. Li", FacultyLabel("Dr. Li"))

	assert.Equal(t, "Room 1", LocationLabel("Room 1", "Hall"))
	assert.Equal(t, "Hall", LocationLabel("", "Hall"))
}
