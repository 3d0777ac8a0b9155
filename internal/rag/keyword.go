// Package rag implements the keyword-triggered context layer: a static
// keyword-to-category map, a Markdown section extractor, and the assembler
// that turns a user message plus knowledge documents into a system-prompt
// addendum.
package rag

import "strings"

// SectionMapping ties a knowledge-document section label to the keywords
// that trigger it.
type SectionMapping struct {
	Section  string
	Keywords []string
}

// Category is a topic tag resolved from user input.
type Category string

// keywordMap is the static category → (section, keywords) table for the
// PLAYA membership club. Immutable after process start.
var keywordMap = map[Category][]SectionMapping{
	"pricing": {
		{Section: "가격", Keywords: []string{"가격", "비용", "얼마", "가입비", "연회비", "보증금", "결제", "카드", "이체", "환불", "양도"}},
	},
	"membership": {
		{Section: "멤버십", Keywords: []string{"멤버십", "회원", "가입", "입회", "추천", "초대", "법인", "개인", "평생", "만기"}},
	},
	"tennis": {
		{Section: "테니스", Keywords: []string{"테니스", "레슨", "코트", "슬롯", "코치", "배드민턴"}},
	},
	"fitness": {
		{Section: "피트니스", Keywords: []string{"피트니스", "헬스", "운동", "pt", "트레이닝", "24시간", "새벽"}},
	},
	"restaurant": {
		{Section: "본연", Keywords: []string{"본연", "레스토랑", "식사", "예약", "와인", "콜키지", "룸"}},
	},
	"lounge": {
		{Section: "라운지", Keywords: []string{"라운지", "카페", "미팅룸", "대관", "도산대로"}},
	},
	"facility": {
		{Section: "시설", Keywords: []string{"시설", "주차", "사물함", "락커", "샤워", "수건", "운동복", "wifi", "와이파이"}},
	},
	"guest": {
		{Section: "게스트", Keywords: []string{"게스트", "초대", "프렌즈", "패스", "지인", "동반"}},
	},
	"family": {
		{Section: "가족", Keywords: []string{"가족", "배우자", "자녀", "패밀리", "아이", "아들", "딸"}},
	},
	"location": {
		{Section: "위치", Keywords: []string{"위치", "주소", "어디", "논현", "파티오나인", "도산대로", "강남"}},
	},
	"hours": {
		{Section: "운영시간", Keywords: []string{"운영시간", "오픈", "몇시", "시간", "휴무", "영업"}},
	},
	"concierge": {
		{Section: "컨시어지", Keywords: []string{"컨시어지", "와인 구매", "부동산", "추천"}},
	},
}

// categoryOrder fixes iteration order so matching is deterministic.
var categoryOrder = []Category{
	"pricing", "membership", "tennis", "fitness", "restaurant", "lounge",
	"facility", "guest", "family", "location", "hours", "concierge",
}

// FindCategories returns every category whose keyword list contains a
// case-insensitive substring of text. Empty slice when nothing matches;
// presence/absence only, no scoring.
func FindCategories(text string) []Category {
	lower := strings.ToLower(text)
	var matched []Category

	for _, category := range categoryOrder {
		for _, mapping := range keywordMap[category] {
			for _, kw := range mapping.Keywords {
				if strings.Contains(lower, strings.ToLower(kw)) {
					matched = append(matched, category)
					break
				}
			}
			if len(matched) > 0 && matched[len(matched)-1] == category {
				break
			}
		}
	}

	return matched
}

// SectionLabels resolves matched categories to their section labels.
func SectionLabels(categories []Category) []string {
	var labels []string
	for _, category := range categories {
		for _, mapping := range keywordMap[category] {
			labels = append(labels, mapping.Section)
		}
	}
	return labels
}
