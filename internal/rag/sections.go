package rag

import "strings"

// ExtractSections pulls matching Markdown sections out of a knowledge
// document. A line starting with "## " or "### " opens a section; the
// section is captured (heading included) when any label is a substring of
// the lowercased heading line, and runs until the next heading. Captured
// sections are joined with a blank line. Returns "" when no heading
// matches; callers treat that as "no relevant context", not an error.
func ExtractSections(document string, labels []string) string {
	lines := strings.Split(document, "\n")

	var sections []string
	var current []string
	capturing := false

	flush := func() {
		if capturing && len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "### ") {
			flush()
			heading := strings.ToLower(line)
			current = []string{line}
			capturing = false
			for _, label := range labels {
				if strings.Contains(heading, strings.ToLower(label)) {
					capturing = true
					break
				}
			}
		} else if capturing {
			current = append(current, line)
		}
	}
	flush()

	return strings.Join(sections, "\n\n")
}
