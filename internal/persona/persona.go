// Package persona holds the single fixed concierge identity. It is a
// configuration record, not a polymorphic agent type.
package persona

import (
	"fmt"
	"strings"
	"time"
)

// Persona drives the system prompt and greeting text for the chat UI.
type Persona struct {
	ID                 string
	Name               string
	PromptTemplate     string
	FirstVisitGreeting string
	ReturningGreeting  string
}

const playaPromptTemplate = `당신은 서울 강남의 invite-only 프리미엄 멤버십 클럽 PLAYA의 컨시어지입니다.
슬로건은 "Wellness Meets Connection"입니다.

오늘 날짜: {{currentDate}}

역할:
- 멤버십, 가격, 시설(테니스/피트니스/라운지/본연 레스토랑), 게스트 초대에 대한 문의에 답합니다.
- 실제 상담사처럼 정중하고 간결한 한국어로 답변합니다.
- 확실하지 않은 정보는 지어내지 말고, 담당 매니저 연결을 안내합니다.
- 가입 의사가 보이면 성함과 연락처를 자연스럽게 여쭤봅니다.`

var koreanWeekdays = []string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// Default returns the PLAYA concierge persona.
func Default() Persona {
	return Persona{
		ID:                 "playa",
		Name:               "PLAYA 컨시어지",
		PromptTemplate:     playaPromptTemplate,
		FirstVisitGreeting: "안녕하세요, PLAYA 컨시어지입니다. 처음 방문해 주셨네요! 멤버십이나 시설에 대해 궁금하신 점을 편하게 물어봐 주세요.",
		ReturningGreeting:  "다시 찾아주셔서 감사합니다. 무엇을 도와드릴까요?",
	}
}

// SystemPrompt renders the prompt template with the current date injected.
func (p Persona) SystemPrompt(now time.Time) string {
	date := fmt.Sprintf("%d년 %d월 %d일 %s",
		now.Year(), int(now.Month()), now.Day(), koreanWeekdays[int(now.Weekday())])
	return strings.TrimSpace(strings.ReplaceAll(p.PromptTemplate, "{{currentDate}}", date))
}
