package glclient

import (
	"context"
	"net/http"

	"labdash/internal/domain"
)

// ListSchedules retrieves every configured report schedule.
func (c *Client) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	if err := c.get(ctx, "/scheduler/reports", nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// GetSchedule retrieves a single schedule.
func (c *Client) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := c.get(ctx, "/scheduler/reports/"+id, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSchedule creates a new weekly report schedule. The backend verifies
// the target user exists before persisting.
func (c *Client) CreateSchedule(ctx context.Context, draft domain.ScheduleDraft) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := c.do(ctx, http.MethodPost, "/scheduler/reports", nil, draft, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSchedule updates an existing schedule.
func (c *Client) UpdateSchedule(ctx context.Context, id string, draft domain.ScheduleDraft) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := c.do(ctx, http.MethodPut, "/scheduler/reports/"+id, nil, draft, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/scheduler/reports/"+id, nil, nil, nil)
}

// RunScheduleNow asks the backend to send the report immediately instead of
// waiting for the next cron slot. The backend queues the send and answers
// 202 with only a detail string, so there is nothing to decode; callers
// refresh the schedule list to pick up last_sent_at and next_run_at.
func (c *Client) RunScheduleNow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/scheduler/reports/"+id+"/send-now", nil, nil, nil)
}
