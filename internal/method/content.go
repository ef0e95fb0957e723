package method

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/luispater/webToolsMCP/internal/browser"
	"github.com/luispater/webToolsMCP/internal/utils"
)

// Mode selects what web_content returns.
type Mode string

const (
	ModeHTML  Mode = "html"
	ModeText  Mode = "text"
	ModeLinks Mode = "links"

	DefaultMode = ModeText
)

// Modes lists the accepted modes in catalog order.
var Modes = []Mode{ModeHTML, ModeText, ModeLinks}

// ParseMode validates a mode argument. The empty string selects DefaultMode.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	for _, mode := range Modes {
		if Mode(s) == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q (must be 'html', 'text', or 'links')", s)
}

// Content navigates to url, scrolls to load lazy content and extracts by mode.
// html and text are cut to MaxContentChars; the links list is returned whole.
func (m *Method) Content(ctx context.Context, url string, mode Mode) (string, error) {
	if err := m.page.Navigate(ctx, url); err != nil {
		return "", err
	}
	if err := m.ScrollToBottom(ctx); err != nil {
		return "", err
	}

	switch mode {
	case ModeHTML:
		html, err := m.page.HTML(ctx)
		if err != nil {
			return "", err
		}
		return utils.Truncate(html, m.opts.MaxContentChars), nil
	case ModeText:
		text, err := m.page.Text(ctx)
		if err != nil {
			return "", err
		}
		return utils.Truncate(text, m.opts.MaxContentChars), nil
	case ModeLinks:
		return m.links(ctx)
	default:
		return "", fmt.Errorf("unsupported mode: %s", mode)
	}
}

func (m *Method) links(ctx context.Context) (string, error) {
	anchors, err := m.page.Links(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(FilterLinks(anchors), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode links: %w", err)
	}
	return string(data), nil
}

// FilterLinks keeps anchors with visible text and an absolute http(s) href.
// The result is never nil.
func FilterLinks(anchors []browser.Link) []browser.Link {
	links := make([]browser.Link, 0, len(anchors))
	for _, a := range anchors {
		text := strings.TrimSpace(a.Text)
		href := strings.TrimSpace(a.Href)
		if text == "" || !utils.IsHTTPURL(href) {
			continue
		}
		links = append(links, browser.Link{Text: text, Href: href})
	}
	return links
}
