package domain

// Step is the parsed form of a test case action. The set of
// implementations is closed: only types in this package satisfy it.
type Step interface {
	step()
}

// InputStep types Text into the resolved element
type InputStep struct {
	Text string
}

// ClickStep clicks the resolved element
type ClickStep struct{}

// VerifyTextStep compares the element's rendered text with Expected
type VerifyTextStep struct {
	Expected string
}

// VerifyVisibilityStep checks the element's visibility against WantVisible
type VerifyVisibilityStep struct {
	WantVisible bool
}

// UnsupportedStep carries an action name outside the supported set
type UnsupportedStep struct {
	Name string
}

func (InputStep) step()            {}
func (ClickStep) step()            {}
func (VerifyTextStep) step()       {}
func (VerifyVisibilityStep) step() {}
func (UnsupportedStep) step()      {}
