package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindCategories(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Category
	}{
		{
			name: "tennis keyword",
			text: "테니스 레슨은 언제 하나요",
			want: []Category{"tennis"},
		},
		{
			name: "price question matches pricing",
			text: "가입비가 얼마인가요",
			want: []Category{"pricing", "membership"},
		},
		{
			name: "uppercase latin keyword",
			text: "PT 받을 수 있나요",
			want: []Category{"fitness"},
		},
		{
			name: "multiple categories",
			text: "테니스 코트 예약하고 주차도 되나요",
			want: []Category{"tennis", "restaurant", "facility"},
		},
		{
			name: "unrelated text",
			text: "오늘 날씨 어때요",
			want: nil,
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindCategories(tt.text))
		})
	}
}

func TestFindCategoriesIsDeterministic(t *testing.T) {
	text := "멤버십 가격과 게스트 초대 규정이 궁금해요"
	first := FindCategories(text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, FindCategories(text))
	}
}

func TestSectionLabels(t *testing.T) {
	labels := SectionLabels([]Category{"tennis", "pricing"})
	assert.Equal(t, []string{"테니스", "가격"}, labels)

	assert.Nil(t, SectionLabels(nil))
	assert.Nil(t, SectionLabels([]Category{"no-such-category"}))
}
