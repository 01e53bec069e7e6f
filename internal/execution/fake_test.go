package execution

import (
	"context"
	"errors"
	"fmt"

	"uirunner/internal/browser"
)

// fakeElement is a scripted element
type fakeElement struct {
	text       string
	visible    bool
	sendErr    error
	clickErr   error
	textErr    error
	visibleErr error
}

// fakeSession resolves selectors from a fixed map and records every call
type fakeSession struct {
	elements    map[string]*fakeElement
	navigateErr error
	closeErr    error

	calls    []string
	typed    []string
	closed   int
	navigate int
}

func newFakeSession(elements map[string]*fakeElement) *fakeSession {
	return &fakeSession{elements: elements}
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.calls = append(s.calls, "navigate "+url)
	s.navigate++
	return s.navigateErr
}

func (s *fakeSession) Element(ctx context.Context, selector string) (browser.Element, error) {
	s.calls = append(s.calls, "element "+selector)
	el, ok := s.elements[selector]
	if !ok {
		return nil, fmt.Errorf("%w: unable to locate element %q", browser.ErrElementNotFound, selector)
	}
	return &recordingElement{fakeElement: el, session: s, selector: selector}, nil
}

func (s *fakeSession) Close() error {
	s.calls = append(s.calls, "close")
	s.closed++
	return s.closeErr
}

type recordingElement struct {
	*fakeElement
	session  *fakeSession
	selector string
}

func (e *recordingElement) SendKeys(ctx context.Context, text string) error {
	e.session.calls = append(e.session.calls, "keys "+e.selector)
	if e.sendErr != nil {
		return e.sendErr
	}
	e.session.typed = append(e.session.typed, text)
	return nil
}

func (e *recordingElement) Click(ctx context.Context) error {
	e.session.calls = append(e.session.calls, "click "+e.selector)
	return e.clickErr
}

func (e *recordingElement) Text(ctx context.Context) (string, error) {
	e.session.calls = append(e.session.calls, "text "+e.selector)
	return e.text, e.textErr
}

func (e *recordingElement) Visible(ctx context.Context) (bool, error) {
	e.session.calls = append(e.session.calls, "visible "+e.selector)
	return e.visible, e.visibleErr
}

// fakeDriver hands out one prepared session
type fakeDriver struct {
	session   *fakeSession
	launchErr error
	launches  int
}

func (d *fakeDriver) Name() string { return "fake" }

func (d *fakeDriver) Launch(ctx context.Context) (browser.Session, error) {
	d.launches++
	if d.launchErr != nil {
		return nil, d.launchErr
	}
	return d.session, nil
}

var errStale = errors.New("stale element reference: element is not attached to the page document")
