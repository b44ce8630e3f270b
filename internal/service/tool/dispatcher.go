// Package tool executes the fixed set of named operations the router can
// select. The dispatcher never raises: every fault is folded into a
// structured result the composer narrates for the user.
package tool

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/internal/model/turn"
	"github.com/luminari-dev/lumi-agent/internal/repository"
)

// ScheduleSource lists upcoming events.
type ScheduleSource interface {
	List(ctx context.Context, start, end, eventType string) ([]repository.Schedule, error)
}

// LetterSink persists a fan letter and returns its id.
type LetterSink interface {
	Create(ctx context.Context, sessionID, userID, category, message string) (string, error)
}

// Dispatcher routes a sanitized tool name to its operation.
type Dispatcher struct {
	schedules ScheduleSource
	letters   LetterSink
	log       *zap.Logger
	pick      func(n int) int
}

// NewDispatcher wires the external collaborators. Either source may be nil;
// the corresponding operations then fail softly.
func NewDispatcher(schedules ScheduleSource, letters LetterSink, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		schedules: schedules,
		letters:   letters,
		log:       log,
		pick:      rand.Intn,
	}
}

// Execute runs one whitelisted operation. An unrecognized name should not
// occur after sanitization but is handled the same way as any other fault.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any, sessionID, userID string) turn.ToolResult {
	if args == nil {
		args = map[string]any{}
	}
	d.log.Info("executing tool", zap.String("tool", name), zap.String("session_id", sessionID))

	switch name {
	case "get_schedule":
		return d.getSchedule(ctx, args)
	case "send_fan_letter":
		return d.sendFanLetter(ctx, args, sessionID, userID)
	case "recommend_song":
		return d.recommendSong(args)
	case "get_weather":
		return d.getWeather()
	default:
		d.log.Warn("unknown tool requested", zap.String("tool", name))
		return turn.ToolResult{Success: false, Error: "알 수 없는 도구: " + name}
	}
}

func (d *Dispatcher) getSchedule(ctx context.Context, args map[string]any) turn.ToolResult {
	start := stringArg(args, "start_date", "")
	end := stringArg(args, "end_date", "")
	eventType := stringArg(args, "event_type", "all")

	if d.schedules == nil {
		return turn.ToolResult{Success: false, Error: "일정 저장소가 설정되지 않았어요"}
	}

	schedules, err := d.schedules.List(ctx, start, end, eventType)
	if err != nil {
		d.log.Error("schedule lookup failed", zap.Error(err))
		return turn.ToolResult{Success: false, Error: err.Error()}
	}

	if len(schedules) == 0 {
		return turn.ToolResult{
			Success: true,
			Data: map[string]any{
				"schedules": []repository.Schedule{},
				"message":   "해당 기간에 예정된 스케줄이 없어요",
			},
		}
	}

	return turn.ToolResult{
		Success: true,
		Data: map[string]any{
			"schedules": schedules,
			"count":     len(schedules),
		},
	}
}

func (d *Dispatcher) sendFanLetter(ctx context.Context, args map[string]any, sessionID, userID string) turn.ToolResult {
	category := stringArg(args, "category", "other")
	message := stringArg(args, "message", "")

	if d.letters == nil {
		return turn.ToolResult{Success: false, Error: "팬레터 저장소가 설정되지 않았어요"}
	}

	letterID, err := d.letters.Create(ctx, sessionID, userID, category, message)
	if err != nil {
		d.log.Error("fan letter save failed", zap.Error(err))
		return turn.ToolResult{Success: false, Error: err.Error()}
	}

	return turn.ToolResult{
		Success: true,
		Data: map[string]any{
			"letter_id": letterID,
			"message":   "팬레터가 잘 전달됐어요",
		},
	}
}

func (d *Dispatcher) recommendSong(args map[string]any) turn.ToolResult {
	mood := stringArg(args, "mood", "happy")

	songs, ok := lumiSongs[mood]
	if !ok {
		songs = lumiSongs["happy"]
	}
	selected := songs[d.pick(len(songs))]

	return turn.ToolResult{
		Success: true,
		Data: map[string]any{
			"song": selected,
			"mood": mood,
		},
		Mock: true,
	}
}

func (d *Dispatcher) getWeather() turn.ToolResult {
	return turn.ToolResult{
		Success: true,
		Data: map[string]any{
			"location":    mockWeather.Location,
			"temperature": mockWeather.Temperature,
			"condition":   mockWeather.Condition,
			"humidity":    mockWeather.Humidity,
			"wind_speed":  mockWeather.WindSpeed,
		},
		Mock: true,
	}
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
