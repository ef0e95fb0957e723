package chrome

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/luispater/webToolsMCP/internal/browser"
	log "github.com/sirupsen/logrus"
)

// Chrome lifecycle event fired when at most two connections stayed open for 500ms.
const lifecycleNetworkAlmostIdle = "networkAlmostIdle"

// Page is a single Chrome tab.
type Page struct {
	ctx        context.Context
	cancel     context.CancelFunc
	targetID   target.ID
	navTimeout time.Duration
	closeOnce  sync.Once
}

var _ browser.Page = (*Page)(nil)

func newPage(ctx context.Context, cancel context.CancelFunc, targetID target.ID, navTimeout time.Duration) *Page {
	return &Page{
		ctx:        ctx,
		cancel:     cancel,
		targetID:   targetID,
		navTimeout: navTimeout,
	}
}

// run executes actions on the tab, aborting when ctx is cancelled or timeout elapses.
func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		defer cancelTimeout()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if p.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.navTimeout)
		defer cancel()
	}

	idle := make(chan struct{})
	var (
		mu        sync.Mutex
		once      sync.Once
		mainFrame cdp.FrameID
	)

	listenCtx, stopListening := context.WithCancel(p.ctx)
	defer stopListening()

	// The first "init" after navigation belongs to the main frame; iframes report their own.
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		e, ok := ev.(*cdppage.EventLifecycleEvent)
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		switch e.Name {
		case "init":
			if mainFrame == "" {
				mainFrame = e.FrameID
			}
		case lifecycleNetworkAlmostIdle:
			if mainFrame != "" && e.FrameID == mainFrame {
				once.Do(func() { close(idle) })
			}
		}
	})

	err := p.run(ctx, 0,
		cdppage.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	select {
	case <-idle:
		log.Debugf("Page %s reached network idle at %s", p.targetID, url)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for network idle on %s: %w", url, ctx.Err())
	case <-p.ctx.Done():
		return fmt.Errorf("page closed while loading %s: %w", url, p.ctx.Err())
	}
}

func (p *Page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action
	if fullPage {
		// Quality 100 keeps the capture in PNG.
		action = chromedp.FullScreenshot(&buf, 100)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := p.run(ctx, 0, action); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

func (p *Page) ScrollHeight(ctx context.Context) (int, error) {
	var height float64
	if err := p.run(ctx, 0, chromedp.Evaluate(scrollHeightScript, &height)); err != nil {
		return 0, fmt.Errorf("failed to read scroll height: %w", err)
	}
	return int(height), nil
}

func (p *Page) ScrollBy(ctx context.Context, dy int) error {
	if err := p.run(ctx, 0, chromedp.Evaluate(fmt.Sprintf(scrollByScript, dy), nil)); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, 0, chromedp.Evaluate(documentHTMLScript, &html)); err != nil {
		return "", fmt.Errorf("failed to read document html: %w", err)
	}
	return html, nil
}

func (p *Page) Text(ctx context.Context) (string, error) {
	var text string
	if err := p.run(ctx, 0, chromedp.Evaluate(bodyTextScript, &text)); err != nil {
		return "", fmt.Errorf("failed to read body text: %w", err)
	}
	return text, nil
}

func (p *Page) Links(ctx context.Context) ([]browser.Link, error) {
	var links []browser.Link
	if err := p.run(ctx, 0, chromedp.Evaluate(anchorsScript, &links)); err != nil {
		return nil, fmt.Errorf("failed to collect links: %w", err)
	}
	return links, nil
}

// Close closes the tab and releases its context. Later calls are no-ops.
func (p *Page) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if errClose := chromedp.Run(p.ctx, cdppage.Close()); errClose != nil {
			err = fmt.Errorf("failed to close page %s: %w", p.targetID, errClose)
		}
		p.cancel()
		log.Debugf("Page (targetID: %s) closed.", p.targetID)
	})
	return err
}
