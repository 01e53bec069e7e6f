package browser

import (
	"errors"
	"fmt"
)

var (
	ErrElementNotFound = errors.New("no such element")
	ErrNotInteractable = errors.New("element not interactable")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrSessionClosed   = errors.New("browser session closed")
	ErrUnknownDriver   = errors.New("unknown browser driver")
)

// LaunchError is returned when a browser session cannot be started.
type LaunchError struct {
	Driver string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s browser: %v", e.Driver, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// NavigationError is returned when a session cannot load a URL.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err ends a whole run rather than a single case.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var launchErr *LaunchError
	var navErr *NavigationError
	return errors.As(err, &launchErr) || errors.As(err, &navErr)
}

func notFound(selector string) error {
	return fmt.Errorf("%w: unable to locate element: {\"method\":\"css selector\",\"selector\":%q}", ErrElementNotFound, selector)
}

func invalidSelector(selector string, err error) error {
	return fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
}

func notInteractable(selector, reason string) error {
	return fmt.Errorf("%w: %s (selector %q)", ErrNotInteractable, reason, selector)
}
