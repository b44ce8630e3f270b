package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/repository"
)

type stubSchedules struct {
	items []repository.Schedule
	err   error

	start, end, eventType string
}

func (s *stubSchedules) List(_ context.Context, start, end, eventType string) ([]repository.Schedule, error) {
	s.start, s.end, s.eventType = start, end, eventType
	return s.items, s.err
}

type stubLetters struct {
	id  string
	err error

	sessionID, userID, category, message string
}

func (s *stubLetters) Create(_ context.Context, sessionID, userID, category, message string) (string, error) {
	s.sessionID, s.userID, s.category, s.message = sessionID, userID, category, message
	return s.id, s.err
}

func newTestDispatcher(schedules ScheduleSource, letters LetterSink) *Dispatcher {
	d := NewDispatcher(schedules, letters, zap.NewNop())
	d.pick = func(int) int { return 0 }
	return d
}

func TestExecuteUnknownTool(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	res := d.Execute(context.Background(), "hack_the_planet", nil, "s1", "")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "알 수 없는 도구")
	assert.Contains(t, res.Error, "hack_the_planet")
}

func TestGetScheduleWithResults(t *testing.T) {
	schedules := &stubSchedules{items: []repository.Schedule{
		{Title: "팬미팅", EventType: "fanmeeting"},
		{Title: "컴백 쇼케이스", EventType: "concert"},
	}}
	d := newTestDispatcher(schedules, nil)

	res := d.Execute(context.Background(), "get_schedule", map[string]any{
		"start_date": "2026-01-01",
		"event_type": "concert",
	}, "s1", "")

	require.True(t, res.Success)
	assert.Equal(t, 2, res.Data["count"])
	assert.Equal(t, "2026-01-01", schedules.start)
	assert.Equal(t, "", schedules.end)
	assert.Equal(t, "concert", schedules.eventType)
}

func TestGetScheduleEmpty(t *testing.T) {
	d := newTestDispatcher(&stubSchedules{}, nil)

	res := d.Execute(context.Background(), "get_schedule", nil, "s1", "")

	require.True(t, res.Success)
	assert.Equal(t, "해당 기간에 예정된 스케줄이 없어요", res.Data["message"])
}

func TestGetScheduleStoreFault(t *testing.T) {
	d := newTestDispatcher(&stubSchedules{err: errors.New("connection reset")}, nil)

	res := d.Execute(context.Background(), "get_schedule", nil, "s1", "")

	assert.False(t, res.Success)
	assert.Equal(t, "connection reset", res.Error)
}

func TestGetScheduleWithoutStore(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	res := d.Execute(context.Background(), "get_schedule", nil, "s1", "")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestSendFanLetter(t *testing.T) {
	letters := &stubLetters{id: "letter-123"}
	d := newTestDispatcher(nil, letters)

	res := d.Execute(context.Background(), "send_fan_letter", map[string]any{
		"message": "루미 최고!",
	}, "s1", "u1")

	require.True(t, res.Success)
	assert.Equal(t, "letter-123", res.Data["letter_id"])
	assert.Equal(t, "s1", letters.sessionID)
	assert.Equal(t, "u1", letters.userID)
	assert.Equal(t, "other", letters.category, "missing category falls back to other")
	assert.Equal(t, "루미 최고!", letters.message)
}

func TestSendFanLetterStoreFault(t *testing.T) {
	d := newTestDispatcher(nil, &stubLetters{err: errors.New("insert failed")})

	res := d.Execute(context.Background(), "send_fan_letter", map[string]any{"message": "hi"}, "s1", "")

	assert.False(t, res.Success)
	assert.Equal(t, "insert failed", res.Error)
}

func TestRecommendSong(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	res := d.Execute(context.Background(), "recommend_song", map[string]any{"mood": "sad"}, "s1", "")

	require.True(t, res.Success)
	assert.True(t, res.Mock)
	assert.Equal(t, "sad", res.Data["mood"])
	assert.Equal(t, lumiSongs["sad"][0], res.Data["song"])
}

func TestRecommendSongUnknownMoodFallsBackToHappy(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	res := d.Execute(context.Background(), "recommend_song", map[string]any{"mood": "nostalgic"}, "s1", "")

	require.True(t, res.Success)
	assert.Equal(t, "nostalgic", res.Data["mood"])
	assert.Equal(t, lumiSongs["happy"][0], res.Data["song"])
}

func TestGetWeather(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	res := d.Execute(context.Background(), "get_weather", nil, "s1", "")

	require.True(t, res.Success)
	assert.True(t, res.Mock)
	assert.Equal(t, "서울", res.Data["location"])
	assert.Equal(t, "맑음", res.Data["condition"])
}
