package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uirunner/internal/domain"
)

func init() {
	color.NoColor = true
}

func sampleOutput() *domain.RunOutput {
	results := []domain.TestResult{
		domain.Pass(domain.TestCase{ID: "TC1", Selector: "body", Action: "verify_visibility", ExpectedResult: "Visible"}, "Visible"),
		domain.Fail(domain.TestCase{ID: "TC2", Selector: "#missing", Action: "click"}, "no such element"),
		domain.Pass(domain.TestCase{ID: "TC3", Selector: "h1", Action: "verify_text", ExpectedResult: "Hi"}, "Hi"),
		domain.Fail(domain.TestCase{ID: "TC4", Selector: "h1", Action: "hover"}, "Action not implemented"),
	}
	return domain.NewRunOutput("0f0e0d0c-aaaa-bbbb-cccc-000000000000", "https://example.com", "static", results, 1500*time.Millisecond, time.Now())
}

func TestOrderResults_FailuresFirst(t *testing.T) {
	ordered := orderResults(sampleOutput().Results)
	var order []string
	for _, r := range ordered {
		order = append(order, r.ID)
	}
	assert.Equal(t, []string{"TC2", "TC4", "TC1", "TC3"}, order)
}

func TestFormatter_PrintRunStats(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).PrintRunStats(sampleOutput())

	out := buf.String()
	assert.Contains(t, out, "Failed Cases")
	assert.Contains(t, out, "1.50s")
	assert.Contains(t, out, "2 of 4 case(s) failed")
	assert.Contains(t, out, "TC2 click #missing: no such element")
	assert.NotContains(t, out, "TC1 verify_visibility")
}

func TestFormatter_PrintRunStats_AllPassed(t *testing.T) {
	output := domain.NewRunOutput("id", "https://example.com", "static",
		[]domain.TestResult{domain.Pass(domain.TestCase{ID: "TC1"}, "Visible")}, time.Second, time.Now())

	var buf bytes.Buffer
	NewFormatter(&buf).PrintRunStats(output)
	assert.Contains(t, buf.String(), "All cases passed")
}

func TestFormatter_PrintResults(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).PrintResults(sampleOutput().Results)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Test Case ID"))
	assert.Contains(t, lines[0], "Actual Result")
	assert.Contains(t, lines[2], "no such element")
	assert.True(t, strings.HasSuffix(lines[2], "Fail"))
}

func TestFormatter_PrintCaseList(t *testing.T) {
	cases := []domain.TestCase{
		{ID: "TC1", Description: "search box", Selector: "input", Action: "verify_visibility"},
		{ID: "TC2", Selector: "a", Action: "hover"},
	}

	var buf bytes.Buffer
	NewFormatter(&buf).PrintCaseList(cases, map[string]struct{}{"TC2": {}})

	out := buf.String()
	assert.Contains(t, out, "Found 2 test case(s)")
	assert.Contains(t, out, "├── TC1  search box")
	assert.Contains(t, out, "└── TC2 [F]")
	assert.Contains(t, out, "hover a (unsupported action)")
}

func TestFormatResultDetails(t *testing.T) {
	output := sampleOutput()

	failed := formatResultDetails(output.Results[1])
	assert.Contains(t, failed, "TC2 failed")
	assert.Contains(t, failed, "no such element")
	assert.NotContains(t, failed, "Input:")

	passed := formatResultDetails(output.Results[0])
	assert.Contains(t, passed, "TC1 passed")
}

func TestListItemText_EscapesTags(t *testing.T) {
	text := listItemText(0, domain.Fail(domain.TestCase{ID: "[red]"}, "x"))
	assert.Contains(t, text, tviewEscaped("[red]"))
}

func tviewEscaped(s string) string {
	return strings.TrimSuffix(s, "]") + "[]"
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b", truncate("a\tb", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
