package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeToolName(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain valid name", "get_schedule", "get_schedule"},
		{"whitespace trimmed", "  recommend_song  ", "recommend_song"},
		{"ascii quotes", `"get_weather"`, "get_weather"},
		{"single quotes", "'send_fan_letter'", "send_fan_letter"},
		{"backticks", "`get_schedule`", "get_schedule"},
		{"typographic quotes", "‘get_schedule’", "get_schedule"},
		{"full-width brackets", "「recommend_song」", "recommend_song"},
		{"corner brackets", "『get_weather』", "get_weather"},
		{"quotes inside the name", "get_\"schedule\"", "get_schedule"},
		{"comma keeps first entry", "get_schedule, recommend_song", "get_schedule"},
		{"quoted list", " 'get_schedule', recommend_song ", "get_schedule"},
		{"question mark chain", "get_schedule?recommend_song?get_weather", "get_schedule"},
		{"comma then question mark", "get_schedule?x, y", "get_schedule"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"not whitelisted", "drop_database", ""},
		{"noise only", "!@#~", ""},
		{"valid name after junk prefix stays invalid", "run get_schedule", ""},
		{"overlong input discarded", strings.Repeat("a", 51), ""},
		{"overlong even when it contains a valid name", "get_schedule" + strings.Repeat(",", 45), ""},
		{"exactly 50 chars still processed", "get_schedule," + strings.Repeat(" ", 37), "get_schedule"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeToolName(tc.raw))
		})
	}
}

func TestIsValidTool(t *testing.T) {
	for _, name := range []string{"get_schedule", "send_fan_letter", "recommend_song", "get_weather"} {
		assert.True(t, IsValidTool(name), name)
	}
	assert.False(t, IsValidTool(""))
	assert.False(t, IsValidTool("GET_SCHEDULE"))
}
