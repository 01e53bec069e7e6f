package generator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uirunner/internal/domain"
)

func TestGenerate_Count(t *testing.T) {
	for _, count := range []int{-3, 0, 1, 4, 5, 12} {
		t.Run(fmt.Sprintf("count=%d", count), func(t *testing.T) {
			cases := Generate("https://example.com", count)

			want := count
			if want < 0 {
				want = 0
			}
			require.Len(t, cases, want)

			seen := make(map[string]bool)
			for i, tc := range cases {
				assert.Equal(t, fmt.Sprintf("TC%d", i+1), tc.ID)
				assert.False(t, seen[tc.ID], "duplicate id %s", tc.ID)
				seen[tc.ID] = true
			}
		})
	}
}

func TestGenerate_Template(t *testing.T) {
	url := "https://example.com"
	cases := Generate(url, 6)
	require.Len(t, cases, 6)

	tests := []struct {
		index    int
		action   string
		selector string
		input    string
	}{
		{0, domain.ActionVerifyVisibility, `input[type="text"], input[name="q"]`, ""},
		{1, domain.ActionVerifyVisibility, `button[type="submit"], button[name="search"]`, ""},
		{2, domain.ActionInput, `input[name="q"]`, ProbeText},
		{3, domain.ActionClick, "a[href]", ""},
		{4, domain.ActionVerifyVisibility, "body", ""},
		{5, domain.ActionVerifyVisibility, "body", ""},
	}

	for _, tt := range tests {
		tc := cases[tt.index]
		assert.Equal(t, tt.action, tc.Action, tc.ID)
		assert.Equal(t, tt.selector, tc.Selector, tc.ID)
		assert.Equal(t, tt.input, tc.InputData, tc.ID)
		assert.Contains(t, tc.Description, url, tc.ID)
	}

	assert.Equal(t, "Visible", cases[0].ExpectedResult)
	assert.Equal(t, "Test Case 6 for https://example.com", cases[5].Description)
}
