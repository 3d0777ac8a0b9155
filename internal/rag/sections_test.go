package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// splitBlocks separates the extractor output into trimmed section blocks.
func splitBlocks(s string) []string {
	var blocks []string
	for _, b := range strings.Split(s, "\n\n") {
		if t := strings.TrimSpace(b); t != "" {
			blocks = append(blocks, t)
		}
	}
	return blocks
}

const sampleDoc = `# PLAYA 안내

인트로 문단입니다.

## 테니스
코트는 20분 단위로 예약합니다.
레슨비는 주중 7만원입니다.

## 가격
가입비는 2,000만원입니다.

### 피트니스
24시간 운영합니다.

## 위치
논현로 742 파티오나인 3층.
`

func TestExtractSections(t *testing.T) {
	t.Run("single match starts with heading", func(t *testing.T) {
		got := ExtractSections(sampleDoc, []string{"테니스"})
		assert.True(t, strings.HasPrefix(got, "## 테니스"))
		assert.Contains(t, got, "레슨비는 주중 7만원입니다.")
		assert.NotContains(t, got, "가입비")
	})

	t.Run("matches both heading depths", func(t *testing.T) {
		got := ExtractSections(sampleDoc, []string{"가격", "피트니스"})
		blocks := splitBlocks(got)
		assert.Len(t, blocks, 2)
		assert.True(t, strings.HasPrefix(blocks[0], "## 가격"))
		assert.True(t, strings.HasPrefix(blocks[1], "### 피트니스"))
	})

	t.Run("K of N headings produce K blocks", func(t *testing.T) {
		got := ExtractSections(sampleDoc, []string{"테니스", "위치"})
		blocks := splitBlocks(got)
		assert.Len(t, blocks, 2)
		for _, block := range blocks {
			assert.True(t, strings.HasPrefix(block, "## "))
		}
	})

	t.Run("capture runs to end of document", func(t *testing.T) {
		got := ExtractSections(sampleDoc, []string{"위치"})
		assert.Contains(t, got, "논현로 742 파티오나인 3층.")
	})

	t.Run("heading match is case-insensitive substring", func(t *testing.T) {
		doc := "## WiFi 안내\n비밀번호는 entrepreneur 입니다.\n"
		got := ExtractSections(doc, []string{"wifi"})
		assert.Contains(t, got, "entrepreneur")
	})

	t.Run("no match returns empty string", func(t *testing.T) {
		assert.Equal(t, "", ExtractSections(sampleDoc, []string{"수영장"}))
	})

	t.Run("top-level heading is not a section marker", func(t *testing.T) {
		assert.Equal(t, "", ExtractSections(sampleDoc, []string{"안내"}))
	})

	t.Run("empty document", func(t *testing.T) {
		assert.Equal(t, "", ExtractSections("", []string{"테니스"}))
	})
}
