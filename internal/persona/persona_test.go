package persona

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemPromptInjectsKoreanDate(t *testing.T) {
	p := Default()

	// 2026-08-31 is a Monday.
	got := p.SystemPrompt(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	assert.Contains(t, got, "2026년 8월 31일 월요일")
	assert.NotContains(t, got, "{{currentDate}}")
	assert.Contains(t, got, "PLAYA")
}

func TestSystemPromptWeekdayMapping(t *testing.T) {
	p := Default()

	// 2026-09-06 is a Sunday.
	assert.Contains(t, p.SystemPrompt(time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)), "일요일")
	// 2026-09-05 is a Saturday.
	assert.Contains(t, p.SystemPrompt(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)), "토요일")
}

func TestDefaultGreetingsDiffer(t *testing.T) {
	p := Default()
	assert.NotEmpty(t, p.FirstVisitGreeting)
	assert.NotEmpty(t, p.ReturningGreeting)
	assert.NotEqual(t, p.FirstVisitGreeting, p.ReturningGreeting)
}
