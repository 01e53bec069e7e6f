package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"uirunner/internal/domain"
)

const maxCellWidth = 48

// Formatter prints run statistics and case tables to a terminal
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// PrintRunStats prints the summary table of a run followed by its failures
func (f *Formatter) PrintRunStats(output *domain.RunOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                      UI Test Run Statistics                   ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Run ID", meta.RunID, white},
		{"URL", meta.URL, white},
		{"Driver", meta.Driver, white},
		{"Total Cases", fmt.Sprint(meta.TotalCases), white},
		{"Passed Cases", fmt.Sprint(meta.PassedCases), green},
		{"Failed Cases", fmt.Sprint(meta.FailedCases), red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-27s", truncate(row.value, 27))
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")
	fmt.Fprintln(f.out)

	failures := output.Failures()
	if len(failures) == 0 {
		green.Fprintln(f.out, "✓ All cases passed!")
		return
	}

	red.Fprintf(f.out, "✗ %d of %d case(s) failed\n\n", len(failures), meta.TotalCases)
	for i, r := range failures {
		connector := "├── "
		if i == len(failures)-1 {
			connector = "└── "
		}
		fmt.Fprint(f.out, connector)
		yellow.Fprintf(f.out, "%s ", r.ID)
		fmt.Fprintf(f.out, "%s %s: ", r.Action, r.Selector)
		red.Fprintln(f.out, r.ActualResult)
	}
}

// PrintResults prints every result as a table in ResultColumns order
func (f *Formatter) PrintResults(results []domain.TestResult) {
	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(domain.ResultColumns, "\t"))
	for _, r := range results {
		cells := r.Row()
		for i := range cells {
			cells[i] = truncate(cells[i], maxCellWidth)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

// PrintCaseList prints cases as a tree. Cases whose ID is in failedIDs
// are marked with [F] in red (from last run).
func (f *Formatter) PrintCaseList(cases []domain.TestCase, failedIDs map[string]struct{}) {
	green.Fprintf(f.out, "Found %d test case(s):\n\n", len(cases))

	for i, tc := range cases {
		last := i == len(cases)-1
		connector, child := "├── ", "│   └── "
		if last {
			connector, child = "└── ", "    └── "
		}

		marker := ""
		if _, ok := failedIDs[tc.ID]; ok {
			marker = " " + red.Sprint("[F]")
		}

		fmt.Fprint(f.out, connector)
		cyan.Fprint(f.out, tc.ID)
		fmt.Fprintf(f.out, "%s  %s\n", marker, tc.Description)

		detail := fmt.Sprintf("%s %s", tc.Action, tc.Selector)
		if _, unsupported := tc.Step().(domain.UnsupportedStep); unsupported {
			fmt.Fprintf(f.out, "%s%s\n", child, red.Sprintf("%s (unsupported action)", detail))
			continue
		}
		fmt.Fprintf(f.out, "%s%s\n", child, yellow.Sprint(detail))
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
