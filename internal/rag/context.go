package rag

import (
	"fmt"
	"sort"
	"strings"
)

const (
	contextPreamble  = "\n\n---\n## 🔍 이 대화와 관련된 추가 정보 (참고해서 자연스럽게 답변하세요)\n\n"
	contextPostamble = "\n\n---\n위 정보를 직접 인용하지 말고, 자연스럽게 대화에 녹여서 답변하세요."
)

// BuildContext assembles the system-prompt addendum for one user turn:
// keyword scan, category → section-label resolution, per-document section
// extraction, and wrapping in the fixed instructional frame. Returns the
// exact empty string when no category matches or nothing is extracted.
// Pure function; the result is appended for that turn only and never
// persisted into conversation history.
func BuildContext(userMessage string, knowledge map[string]string) string {
	categories := FindCategories(userMessage)
	if len(categories) == 0 {
		return ""
	}

	labels := SectionLabels(categories)

	// Stable document order regardless of map iteration.
	names := make([]string, 0, len(knowledge))
	for name := range knowledge {
		names = append(names, name)
	}
	sort.Strings(names)

	var fragments []string
	for _, name := range names {
		extracted := ExtractSections(knowledge[name], labels)
		if strings.TrimSpace(extracted) == "" {
			continue
		}
		fragments = append(fragments, fmt.Sprintf("[%s에서 추출]\n%s", name, extracted))
	}

	if len(fragments) == 0 {
		return ""
	}

	return contextPreamble + strings.Join(fragments, "\n\n") + contextPostamble
}
