package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Schedule is one broadcast/performance entry.
type Schedule struct {
	Title     string    `json:"title"`
	EventType string    `json:"event_type"`
	StartsAt  time.Time `json:"starts_at"`
	Location  string    `json:"location,omitempty"`
}

// ScheduleStore reads upcoming events.
type ScheduleStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewScheduleStore builds a store on the shared pool.
func NewScheduleStore(pool *pgxpool.Pool, log *zap.Logger) *ScheduleStore {
	return &ScheduleStore{pool: pool, log: log}
}

// List returns events in [start, end], optionally filtered by event type.
// Empty bounds are open; an empty or "all" eventType matches everything.
func (s *ScheduleStore) List(ctx context.Context, start, end, eventType string) ([]Schedule, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	if eventType == "all" {
		eventType = ""
	}

	rows, err := s.pool.Query(ctx, `
		SELECT title, event_type, starts_at, COALESCE(location, '')
		FROM schedules
		WHERE ($1 = '' OR starts_at >= $1::timestamptz)
		  AND ($2 = '' OR starts_at <= $2::timestamptz)
		  AND ($3 = '' OR event_type = $3)
		ORDER BY starts_at`,
		start, end, eventType)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		var item Schedule
		if err := rows.Scan(&item.Title, &item.EventType, &item.StartsAt, &item.Location); err != nil {
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		schedules = append(schedules, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule rows: %w", err)
	}

	s.log.Debug("schedule lookup", zap.Int("count", len(schedules)),
		zap.String("start", start), zap.String("end", end))
	return schedules, nil
}
