package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// isDisplayedJS runs with the element bound to this.
const isDisplayedJS = `function() {
	if (!this.isConnected) return false;
	if (this.tagName === 'INPUT' && this.type === 'hidden') return false;
	for (let el = this; el; el = el.parentElement) {
		if (window.getComputedStyle(el).display === 'none') return false;
	}
	const style = window.getComputedStyle(this);
	if (style.visibility === 'hidden' || style.visibility === 'collapse') return false;
	if (parseFloat(style.opacity) === 0) return false;
	const rect = this.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
}`

const innerTextJS = `function() { return this.innerText || ''; }`

// ChromeDriver launches Chrome through the DevTools protocol
type ChromeDriver struct {
	opts Options
}

// NewChromeDriver creates a new ChromeDriver
func NewChromeDriver(opts Options) *ChromeDriver {
	return &ChromeDriver{opts: opts}
}

// Name returns the driver name
func (d *ChromeDriver) Name() string {
	return DriverChrome
}

// Launch starts a browser process and waits for its first target.
func (d *ChromeDriver) Launch(ctx context.Context) (Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", d.opts.Headless))
	if d.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(d.opts.ChromePath))
	}
	if d.opts.WindowWidth > 0 && d.opts.WindowHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(d.opts.WindowWidth, d.opts.WindowHeight))
	}
	if d.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(d.opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &LaunchError{Driver: DriverChrome, Err: err}
	}

	return &chromeSession{
		ctx:  browserCtx,
		opts: d.opts,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	closed bool
}

// op derives a context for one chromedp call. It lives under the browser
// context and is also cancelled when the caller's ctx is.
func (s *chromeSession) op(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := withTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if s.closed {
		return &NavigationError{URL: url, Err: ErrSessionClosed}
	}
	opCtx, cancel := s.op(ctx, s.opts.NavigationTimeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.Navigate(url)); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

func (s *chromeSession) Element(ctx context.Context, selector string) (Element, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	opCtx, cancel := s.op(ctx, s.opts.ElementTimeout)
	defer cancel()

	// ByQuery polls until the selector matches, so a timeout means nothing matched.
	var nodes []*cdp.Node
	err := chromedp.Run(opCtx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery))
	if err != nil {
		if timedOut(ctx, err) {
			return nil, notFound(selector)
		}
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, notFound(selector)
	}
	return &chromeElement{session: s, selector: selector, node: nodes[0]}, nil
}

func (s *chromeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	return err
}

type chromeElement struct {
	session  *chromeSession
	selector string
	node     *cdp.Node
}

func (e *chromeElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

// interact runs an action that waits for the node to become visible.
func (e *chromeElement) interact(ctx context.Context, action chromedp.Action) error {
	opCtx, cancel := e.session.op(ctx, e.session.opts.ElementTimeout)
	defer cancel()

	if err := chromedp.Run(opCtx, action); err != nil {
		if timedOut(ctx, err) {
			return notInteractable(e.selector, "element did not become visible")
		}
		return err
	}
	return nil
}

func (e *chromeElement) SendKeys(ctx context.Context, text string) error {
	return e.interact(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e *chromeElement) Click(ctx context.Context) error {
	return e.interact(ctx, chromedp.Click(e.ids(), chromedp.ByNodeID))
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	visible, err := e.Visible(ctx)
	if err != nil {
		return "", err
	}
	if !visible {
		return "", nil
	}
	var text string
	if err := e.call(ctx, innerTextJS, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (e *chromeElement) Visible(ctx context.Context) (bool, error) {
	var visible bool
	if err := e.call(ctx, isDisplayedJS, &visible); err != nil {
		return false, err
	}
	return visible, nil
}

func (e *chromeElement) call(ctx context.Context, fn string, res any) error {
	opCtx, cancel := e.session.op(ctx, e.session.opts.ElementTimeout)
	defer cancel()

	// fn runs with the resolved node bound to this; its result comes back by value.
	return chromedp.Run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node %q: %w", e.selector, err)
		}
		defer func() {
			_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
		}()

		v, exception, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exception != nil {
			return exception
		}
		return json.Unmarshal(v.Value, res)
	}))
}

// timedOut reports whether err came from the per-operation deadline rather
// than the caller giving up.
func timedOut(parent context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil
}
