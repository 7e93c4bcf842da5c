package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"schedule-board/backend/internal/model"
)

// envelope 服务端统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HTTPProvider 通过本服务的 /api/v1 记录接口取数，供终端客户端使用
type HTTPProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPProvider baseURL 形如 http://localhost:8080
func NewHTTPProvider(baseURL, token string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) GetBookings(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	if err := p.get(ctx, "/api/v1/bookings", nil, &out); err != nil {
		return nil, fetchError(OpBookings, err)
	}
	return out, nil
}

func (p *HTTPProvider) GetAllBookedTimeSlots(ctx context.Context, date string) ([]model.BookedSlot, error) {
	var out []model.BookedSlot
	q := url.Values{"date": []string{date}}
	if err := p.get(ctx, "/api/v1/bookings/booked-slots", q, &out); err != nil {
		return nil, fetchError(OpBookedSlots, err)
	}
	return out, nil
}

func (p *HTTPProvider) GetTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	var out []model.TimetableEntry
	if err := p.get(ctx, "/api/v1/timetable", nil, &out); err != nil {
		return nil, fetchError(OpTimetable, err)
	}
	return out, nil
}

func (p *HTTPProvider) GetTodayTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	var out []model.TimetableEntry
	if err := p.get(ctx, "/api/v1/timetable/today", nil, &out); err != nil {
		return nil, fetchError(OpTodayTimetable, err)
	}
	return out, nil
}

func (p *HTTPProvider) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	u := p.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("响应格式错误 (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || env.Code != 0 {
		return fmt.Errorf("HTTP %d code=%d: %s", resp.StatusCode, env.Code, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("解析 data 失败: %w", err)
	}
	return nil
}
