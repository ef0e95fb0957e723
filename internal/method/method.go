// Package method implements the page operations behind the tools: navigation,
// lazy-load scrolling, content extraction and screenshots.
package method

import (
	"time"

	"github.com/luispater/webToolsMCP/internal/browser"
	"github.com/luispater/webToolsMCP/internal/config"
)

type ScrollOptions struct {
	Step     int
	Interval time.Duration
	MaxSteps int
}

type Options struct {
	MaxContentChars int
	Scroll          ScrollOptions
}

// OptionsFromConfig maps the application config onto page operation options.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		MaxContentChars: cfg.Content.MaxChars,
		Scroll: ScrollOptions{
			Step:     cfg.Scroll.Step,
			Interval: cfg.Scroll.Interval,
			MaxSteps: cfg.Scroll.MaxSteps,
		},
	}
}

// Method runs operations against one page. It never closes the page.
type Method struct {
	page browser.Page
	opts Options
}

func NewMethod(page browser.Page, opts Options) *Method {
	return &Method{
		page: page,
		opts: opts,
	}
}
