// Package browser owns browser sessions for a run: launching a browser,
// loading pages and resolving CSS selectors to elements.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Driver names
const (
	DriverChrome = "chrome"
	DriverStatic = "static"
)

// Driver starts browser sessions
type Driver interface {
	Name() string
	Launch(ctx context.Context) (Session, error)
}

// Session is a single live browser. It is not safe for concurrent use.
type Session interface {
	// Navigate loads url, replacing the current page.
	Navigate(ctx context.Context, url string) error
	// Element resolves the first element matching a CSS selector.
	Element(ctx context.Context, selector string) (Element, error)
	// Close releases the browser. Callers log the error and move on.
	Close() error
}

// Element is a resolved DOM element on the current page
type Element interface {
	SendKeys(ctx context.Context, text string) error
	Click(ctx context.Context) error
	// Text returns the rendered text of the element.
	Text(ctx context.Context) (string, error)
	Visible(ctx context.Context) (bool, error)
}

// Options configures the drivers
type Options struct {
	Driver            string
	Headless          bool
	ChromePath        string
	UserAgent         string
	WindowWidth       int
	WindowHeight      int
	ElementTimeout    time.Duration
	NavigationTimeout time.Duration

	// HTTPClient is used by the static driver; nil means a client with
	// NavigationTimeout.
	HTTPClient *http.Client
}

// NewDriver returns the driver named by opts.Driver.
func NewDriver(opts Options) (Driver, error) {
	switch opts.Driver {
	case DriverChrome, "":
		return NewChromeDriver(opts), nil
	case DriverStatic:
		return NewStaticDriver(opts), nil
	default:
		return nil, &LaunchError{Driver: opts.Driver, Err: fmt.Errorf("%w %q", ErrUnknownDriver, opts.Driver)}
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
