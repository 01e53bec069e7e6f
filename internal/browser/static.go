package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// StaticDriver loads pages over HTTP and evaluates selectors against the
// served HTML. It runs no JavaScript, so it only suits server-rendered pages.
type StaticDriver struct {
	opts Options
}

// NewStaticDriver creates a new StaticDriver
func NewStaticDriver(opts Options) *StaticDriver {
	return &StaticDriver{opts: opts}
}

// Name returns the driver name
func (d *StaticDriver) Name() string {
	return DriverStatic
}

// Launch returns a session with an empty page
func (d *StaticDriver) Launch(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LaunchError{Driver: DriverStatic, Err: err}
	}
	client := d.opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: d.opts.NavigationTimeout}
	}
	return &staticSession{client: client, userAgent: d.opts.UserAgent}, nil
}

type staticSession struct {
	client    *http.Client
	userAgent string
	doc       *goquery.Document
	current   *url.URL
	closed    bool
}

func (s *staticSession) Navigate(ctx context.Context, rawURL string) error {
	if s.closed {
		return &NavigationError{URL: rawURL, Err: ErrSessionClosed}
	}
	if err := s.load(ctx, rawURL); err != nil {
		return &NavigationError{URL: rawURL, Err: err}
	}
	return nil
}

// load replaces the current document. Error statuses still render a page,
// like a browser would; only transport failures are errors.
func (s *staticSession) load(ctx context.Context, rawURL string) error {
	target, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if s.current != nil {
		target = s.current.ResolveReference(target)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", target.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	s.doc = doc
	s.current = resp.Request.URL
	return nil
}

func (s *staticSession) Element(ctx context.Context, selector string) (Element, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, invalidSelector(selector, err)
	}
	if s.doc == nil {
		return nil, notFound(selector)
	}

	// FindMatcher returns matches in document order.
	sel := s.doc.FindMatcher(matcher).First()
	if sel.Length() == 0 {
		return nil, notFound(selector)
	}
	return &staticElement{session: s, selector: selector, sel: sel}, nil
}

func (s *staticSession) Close() error {
	s.closed = true
	s.doc = nil
	return nil
}

type staticElement struct {
	session  *staticSession
	selector string
	sel      *goquery.Selection
}

func (e *staticElement) SendKeys(ctx context.Context, text string) error {
	if !isDisplayed(e.sel) {
		return notInteractable(e.selector, "element is not visible")
	}
	if !isEditable(e.sel) {
		return notInteractable(e.selector, "element does not accept text input")
	}
	if goquery.NodeName(e.sel) == "textarea" {
		e.sel.SetText(e.sel.Text() + text)
		return nil
	}
	value, _ := e.sel.Attr("value")
	e.sel.SetAttr("value", value+text)
	return nil
}

// Click follows anchors; any other visible element accepts the click without
// effect since no scripts run.
func (e *staticElement) Click(ctx context.Context) error {
	if !isDisplayed(e.sel) {
		return notInteractable(e.selector, "element is not visible")
	}
	if _, disabled := e.sel.Attr("disabled"); disabled {
		return notInteractable(e.selector, "element is disabled")
	}

	link := e.sel.Closest("a[href]")
	if link.Length() == 0 {
		return nil
	}
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return nil
	}
	if err := e.session.load(ctx, href); err != nil {
		return fmt.Errorf("follow link %q: %w", href, err)
	}
	return nil
}

func (e *staticElement) Text(ctx context.Context) (string, error) {
	if !isDisplayed(e.sel) {
		return "", nil
	}
	return renderedText(e.sel), nil
}

func (e *staticElement) Visible(ctx context.Context) (bool, error) {
	return isDisplayed(e.sel), nil
}
