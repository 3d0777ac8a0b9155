package rag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadKnowledgeDir reads every Markdown file in dir into a name → content
// map. The map keys are bare file names without the .md extension, which is
// what BuildContext tags extracted fragments with.
func LoadKnowledgeDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge dir %s: %w", dir, err)
	}

	knowledge := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read knowledge file %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		knowledge[name] = string(content)
	}
	return knowledge, nil
}
