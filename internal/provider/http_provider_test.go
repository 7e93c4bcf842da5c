package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProvider_DecodesEnvelope(t *testing.T) {
	var gotAuth, gotDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/bookings":
			_, _ = w.Write([]byte(`{"code":0,"message":"success","data":[{"id":"b1","user_id":"u1","status":"confirmed","start_time":"2024-05-01T09:00:00Z","end_time":"2024-05-01T10:00:00Z"}]}`))
		case "/api/v1/bookings/booked-slots":
			gotDate = r.URL.Query().Get("date")
			_, _ = w.Write([]byte(`{"code":0,"message":"success","data":[{"id":"t1","type":"timetable","start_time":"2024-05-01T08:00:00Z","end_time":"2024-05-01T09:00:00Z"}]}`))
		case "/api/v1/timetable/today":
			_, _ = w.Write([]byte(`{"code":0,"message":"success","data":null}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL+"/", "tok", time.Second)
	ctx := context.Background()

	bookings, err := p.GetBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b1", bookings[0].BookingID)
	assert.Equal(t, "Bearer tok", gotAuth)

	slots, err := p.GetAllBookedTimeSlots(ctx, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "2024-05-01", gotDate)

	today, err := p.GetTodayTimetable(ctx)
	require.NoError(t, err)
	assert.Empty(t, today)
}

func TestHTTPProvider_ErrorResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/bookings":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"code":50201,"message":"Failed to load schedule"}`))
		case "/api/v1/timetable":
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", time.Second)
	ctx := context.Background()

	_, err := p.GetBookings(ctx)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "50201")

	_, err = p.GetTimetable(ctx)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestHTTPProvider_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetTimetable(ctx)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
