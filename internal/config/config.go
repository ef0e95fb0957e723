package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Debug      bool                `yaml:"debug"`
	Transport  string              `yaml:"transport"`
	HTTP       AppConfigHTTP       `yaml:"http"`
	Browser    AppConfigBrowser    `yaml:"browser"`
	Content    AppConfigContent    `yaml:"content"`
	Scroll     AppConfigScroll     `yaml:"scroll"`
	Screenshot AppConfigScreenshot `yaml:"screenshot"`
}

type AppConfigHTTP struct {
	Addr string `yaml:"addr"`
}

type AppConfigBrowser struct {
	ExecPath          string        `yaml:"exec-path"`
	Headless          bool          `yaml:"headless"`
	NoSandbox         bool          `yaml:"no-sandbox"`
	WindowWidth       int           `yaml:"window-width"`
	WindowHeight      int           `yaml:"window-height"`
	UserAgent         string        `yaml:"user-agent,omitempty"`
	UserDataDir       string        `yaml:"user-data-dir,omitempty"`
	Args              []string      `yaml:"args"`
	NavigationTimeout time.Duration `yaml:"navigation-timeout"`
}

type AppConfigContent struct {
	MaxChars int `yaml:"max-chars"`
}

// AppConfigScroll bounds the lazy-load scroll simulation.
type AppConfigScroll struct {
	Step     int           `yaml:"step"`
	Interval time.Duration `yaml:"interval"`
	MaxSteps int           `yaml:"max-steps"`
}

type AppConfigScreenshot struct {
	IncludeImage bool `yaml:"include-image"`
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	return &AppConfig{
		Transport: TransportStdio,
		HTTP: AppConfigHTTP{
			Addr: ":8931",
		},
		Browser: AppConfigBrowser{
			Headless:     true,
			NoSandbox:    true,
			WindowWidth:  1280,
			WindowHeight: 800,
		},
		Content: AppConfigContent{
			MaxChars: 50000,
		},
		Scroll: AppConfigScroll{
			Step:     100,
			Interval: 100 * time.Millisecond,
			MaxSteps: 200,
		},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *AppConfig) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport %q", c.Transport)
	}
	if c.Transport == TransportHTTP && c.HTTP.Addr == "" {
		return fmt.Errorf("http transport requires http.addr")
	}
	if c.Content.MaxChars <= 0 {
		return fmt.Errorf("content.max-chars must be positive, got %d", c.Content.MaxChars)
	}
	if c.Scroll.Step <= 0 {
		return fmt.Errorf("scroll.step must be positive, got %d", c.Scroll.Step)
	}
	if c.Scroll.MaxSteps <= 0 {
		return fmt.Errorf("scroll.max-steps must be positive, got %d", c.Scroll.MaxSteps)
	}
	if c.Scroll.Interval < 0 {
		return fmt.Errorf("scroll.interval must not be negative")
	}
	if c.Browser.NavigationTimeout < 0 {
		return fmt.Errorf("browser.navigation-timeout must not be negative")
	}
	return nil
}
