package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/luispater/webToolsMCP/internal/browser"
	"github.com/luispater/webToolsMCP/internal/config"
	log "github.com/sirupsen/logrus"
)

// ErrClosed is returned once the manager has been shut down.
var ErrClosed = errors.New("browser manager is closed")

// Manager owns the single headless Chrome instance shared by every invocation.
// The browser is launched on first use and lives until Close.
type Manager struct {
	cfg      config.AppConfigBrowser
	execPath string
	opts     []chromedp.ExecAllocatorOption

	mu            sync.Mutex
	closed        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	// launch starts the browser and sets browserCtx; it runs with mu held.
	launch func() error
}

// NewManager creates a new chromedp Manager.
// It prepares the allocator options but does not launch the browser yet.
func NewManager(cfg config.AppConfigBrowser) *Manager {
	execPath := cfg.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_BIN")
		if execPath == "" {
			log.Debug("Chrome path not specified in config or CHROME_BIN env, will attempt auto-detection.")
		}
	}

	m := &Manager{
		cfg:      cfg,
		execPath: execPath,
		opts:     allocatorOptions(cfg, execPath),
	}
	m.launch = m.launchBrowser
	return m
}

func allocatorOptions(cfg config.AppConfigBrowser, execPath string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
	}

	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	if cfg.Headless {
		opts = append(opts, chromedp.Headless, chromedp.DisableGPU)
	}

	// Needed inside containers and other restricted environments.
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox, chromedp.Flag("disable-setuid-sandbox", true))
	}

	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}

	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	for _, arg := range cfg.Args {
		name, value, ok := parseFlag(arg)
		if ok {
			opts = append(opts, chromedp.Flag(name, value))
		}
	}

	return opts
}

// parseFlag turns "--name=value" or "--name" into a chromedp flag.
func parseFlag(arg string) (string, interface{}, bool) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", nil, false
	}
	parts := strings.SplitN(arg, "=", 2)
	name := strings.TrimLeft(parts[0], "-")
	if name == "" {
		return "", nil, false
	}
	if len(parts) == 2 {
		return name, parts[1], true
	}
	return name, true, true
}

// AcquireBrowser returns the shared browser context, launching Chrome on first call.
// Concurrent first callers wait for the same launch. A failed launch is reported
// to the caller and attempted again on the next call.
func (m *Manager) AcquireBrowser() (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.browserCtx != nil {
		return m.browserCtx, nil
	}
	if err := m.launch(); err != nil {
		return nil, err
	}
	return m.browserCtx, nil
}

func (m *Manager) launchBrowser() error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), m.opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Debugf))

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	m.allocCancel = allocCancel
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel

	if m.execPath != "" {
		log.Infof("Chrome launched with path: %s", m.execPath)
	} else {
		log.Info("Chrome launched.")
	}
	return nil
}

// NewPage opens a fresh tab in the shared browser.
func (m *Manager) NewPage(_ context.Context) (browser.Page, error) {
	browserCtx, err := m.AcquireBrowser()
	if err != nil {
		return nil, err
	}

	var targetID target.ID
	err = chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var errCreateTarget error
		targetID, errCreateTarget = target.CreateTarget("about:blank").Do(ctx)
		return errCreateTarget
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create new target (tab): %w", err)
	}

	pageCtx, pageCancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(targetID))
	if err = chromedp.Run(pageCtx); err != nil {
		pageCancel()
		return nil, fmt.Errorf("failed to attach to target %s: %w", targetID, err)
	}

	log.Debugf("New page (targetID: %s) created.", targetID)
	return newPage(pageCtx, pageCancel, targetID, m.cfg.NavigationTimeout), nil
}

// Close shuts the browser down. Pages still open are torn down with it.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.browserCancel != nil {
		log.Debug("Cancelling browser context...")
		m.browserCancel()
		m.browserCancel = nil
		m.browserCtx = nil
	}

	if m.allocCancel != nil {
		m.allocCancel()
		m.allocCancel = nil
		log.Debug("Allocator cancelled and browser process shut down.")
	}

	return nil
}
