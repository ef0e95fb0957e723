// Package browsertest provides in-memory browser doubles for tests.
package browsertest

import (
	"context"
	"errors"
	"sync"

	"github.com/luispater/webToolsMCP/internal/browser"
)

// Page is a scripted browser.Page that records how it was used.
type Page struct {
	NavigateErr    error
	NavigatePanic  interface{}
	ScreenshotData []byte
	ScreenshotErr  error
	HTMLContent    string
	TextContent    string
	Anchors        []browser.Link
	EvalErr        error

	// Heights are returned by successive ScrollHeight calls; the last one repeats.
	Heights []int

	mu          sync.Mutex
	navigated   []string
	fullPage    []bool
	heightReads int
	scrolledBy  []int
	closeCalls  int
}

var _ browser.Page = (*Page)(nil)

func (p *Page) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	p.navigated = append(p.navigated, url)
	p.mu.Unlock()
	if p.NavigatePanic != nil {
		panic(p.NavigatePanic)
	}
	return p.NavigateErr
}

func (p *Page) Screenshot(_ context.Context, fullPage bool) ([]byte, error) {
	p.mu.Lock()
	p.fullPage = append(p.fullPage, fullPage)
	p.mu.Unlock()
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return p.ScreenshotData, nil
}

func (p *Page) ScrollHeight(_ context.Context) (int, error) {
	if p.EvalErr != nil {
		return 0, p.EvalErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.heightReads
	p.heightReads++
	if len(p.Heights) == 0 {
		return 0, nil
	}
	if i >= len(p.Heights) {
		i = len(p.Heights) - 1
	}
	return p.Heights[i], nil
}

func (p *Page) ScrollBy(_ context.Context, dy int) error {
	if p.EvalErr != nil {
		return p.EvalErr
	}
	p.mu.Lock()
	p.scrolledBy = append(p.scrolledBy, dy)
	p.mu.Unlock()
	return nil
}

func (p *Page) HTML(_ context.Context) (string, error) {
	if p.EvalErr != nil {
		return "", p.EvalErr
	}
	return p.HTMLContent, nil
}

func (p *Page) Text(_ context.Context) (string, error) {
	if p.EvalErr != nil {
		return "", p.EvalErr
	}
	return p.TextContent, nil
}

func (p *Page) Links(_ context.Context) ([]browser.Link, error) {
	if p.EvalErr != nil {
		return nil, p.EvalErr
	}
	return p.Anchors, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalls++
	return nil
}

// Navigated returns the URLs passed to Navigate, in order.
func (p *Page) Navigated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigated...)
}

// FullPageRequests returns the fullPage flag of every Screenshot call.
func (p *Page) FullPageRequests() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.fullPage...)
}

// ScrollSteps returns the dy of every ScrollBy call.
func (p *Page) ScrollSteps() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.scrolledBy...)
}

func (p *Page) HeightReads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heightReads
}

func (p *Page) CloseCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalls
}

// ErrNoPage is returned by Provider when it has nothing left to hand out.
var ErrNoPage = errors.New("browsertest: no page configured")

// Provider hands out Page values and counts how many were opened.
type Provider struct {
	// NewPageFunc builds each page. When nil, an empty Page is used.
	NewPageFunc func() *Page
	Err         error

	mu     sync.Mutex
	opened []*Page
}

var _ browser.Provider = (*Provider)(nil)

func (p *Provider) NewPage(_ context.Context) (browser.Page, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	page := &Page{}
	if p.NewPageFunc != nil {
		page = p.NewPageFunc()
		if page == nil {
			return nil, ErrNoPage
		}
	}
	p.mu.Lock()
	p.opened = append(p.opened, page)
	p.mu.Unlock()
	return page, nil
}

// Opened returns every page handed out so far.
func (p *Provider) Opened() []*Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Page(nil), p.opened...)
}
