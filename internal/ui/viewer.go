package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"uirunner/internal/domain"
)

// Viewer displays run results in an interactive TUI
type Viewer interface {
	View(output *domain.RunOutput) error
}

// ResultsViewer lists the results of a run, failures first
type ResultsViewer struct{}

// NewResultsViewer creates a new ResultsViewer
func NewResultsViewer() *ResultsViewer {
	return &ResultsViewer{}
}

// orderResults puts failures before passes, keeping run order within each group
func orderResults(results []domain.TestResult) []domain.TestResult {
	ordered := make([]domain.TestResult, 0, len(results))
	for _, r := range results {
		if !r.Passed() {
			ordered = append(ordered, r)
		}
	}
	for _, r := range results {
		if r.Passed() {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

// View displays the results of output until the user exits
func (v *ResultsViewer) View(output *domain.RunOutput) error {
	if len(output.Results) == 0 {
		color.Yellow("No results recorded for run %s", output.Meta.RunID)
		return nil
	}

	all := orderResults(output.Results)
	shown := all
	failuresOnly := false

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(formatHeader(output.Meta, failuresOnly))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(shown) {
			statsView.SetText(formatResultStats(shown[index], output.Meta))
			detailsView.SetText(formatResultDetails(shown[index]))
		} else {
			statsView.SetText("")
			detailsView.SetText("[green]No failures in this run[white]")
		}
	}

	fill := func() {
		list.Clear()
		for i, r := range shown {
			list.AddItem(listItemText(i, r), "", 0, nil)
		}
		updateHeader()
		updateDetails()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'f', 'F':
				failuresOnly = !failuresOnly
				if failuresOnly {
					shown = output.Failures()
				} else {
					shown = all
				}
				fill()
				return nil
			case 'q', 'Q':
				app.Stop()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	fill()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func formatHeader(meta domain.RunMeta, failuresOnly bool) string {
	scope := "all"
	if failuresOnly {
		scope = "failures"
	}
	return fmt.Sprintf(" Run %s: [green]%d passed[white], [red]%d failed[white] (showing %s) | ↑↓ navigate, [yellow]F[white] toggle failures, → details, ← back, Q to exit ",
		shortRunID(meta.RunID), meta.PassedCases, meta.FailedCases, scope)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func listItemText(index int, r domain.TestResult) string {
	if r.Passed() {
		return fmt.Sprintf("[green]✓[white] [yellow]%d.[white] %s", index+1, tview.Escape(r.ID))
	}
	return fmt.Sprintf("[red]✗[white] [yellow]%d.[white] %s", index+1, tview.Escape(r.ID))
}

func formatResultStats(r domain.TestResult, meta domain.RunMeta) string {
	return fmt.Sprintf("[cyan]url:[white] [yellow]%s[white]\n[cyan]case:[white] [yellow]%s[white] %s",
		tview.Escape(meta.URL), tview.Escape(r.ID), tview.Escape(r.Description))
}

// formatResultDetails formats a result using tview color tags
func formatResultDetails(r domain.TestResult) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if r.Passed() {
		fmt.Fprintf(w, "[green]✓ %s passed[white]\n\n", tview.Escape(r.ID))
	} else {
		fmt.Fprintf(w, "[red]✗ %s failed[white]\n\n", tview.Escape(r.ID))
	}

	fmt.Fprintf(w, "[yellow]Selector:[white]\t%s\n", tview.Escape(r.Selector))
	fmt.Fprintf(w, "[yellow]Action:[white]\t%s\n", tview.Escape(r.Action))
	if r.InputData != "" {
		fmt.Fprintf(w, "[yellow]Input:[white]\t%s\n", tview.Escape(r.InputData))
	}
	fmt.Fprintf(w, "[yellow]Expected:[white]\t%s\n", tview.Escape(r.ExpectedResult))
	w.Flush()

	fmt.Fprintf(&builder, "\n[yellow]Actual Result:[white]\n%s\n", tview.Escape(r.ActualResult))
	return builder.String()
}
