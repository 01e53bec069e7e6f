package domain

import "strings"

// Action names accepted in the Action column
const (
	ActionInput            = "input"
	ActionClick            = "click"
	ActionVerifyText       = "verify_text"
	ActionVerifyVisibility = "verify_visibility"
)

// Visible and NotVisible are the observed values reported by verify_visibility
const (
	Visible    = "Visible"
	NotVisible = "Not Visible"
)

// CaseColumns is the column order of a test case table
var CaseColumns = []string{
	"Test Case ID",
	"Description",
	"Element Selector",
	"Action",
	"Input Data",
	"Expected Result",
}

// ResultColumns is the column order of a test result table
var ResultColumns = append(append([]string{}, CaseColumns...), "Actual Result", "Status")

// TestCase represents one declarative browser check or action
type TestCase struct {
	ID             string `json:"test_case_id"`
	Description    string `json:"description"`
	Selector       string `json:"element_selector"`
	Action         string `json:"action"`
	InputData      string `json:"input_data"`
	ExpectedResult string `json:"expected_result"`
}

// Step parses the case into the action variant the executor runs.
func (tc TestCase) Step() Step {
	switch tc.Action {
	case ActionInput:
		return InputStep{Text: tc.InputData}
	case ActionClick:
		return ClickStep{}
	case ActionVerifyText:
		return VerifyTextStep{Expected: tc.ExpectedResult}
	case ActionVerifyVisibility:
		return VerifyVisibilityStep{WantVisible: strings.EqualFold(tc.ExpectedResult, "visible")}
	default:
		return UnsupportedStep{Name: tc.Action}
	}
}

// Row returns the case as table cells in CaseColumns order
func (tc TestCase) Row() []string {
	return []string{tc.ID, tc.Description, tc.Selector, tc.Action, tc.InputData, tc.ExpectedResult}
}
