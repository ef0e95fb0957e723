package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/luispater/webToolsMCP/internal/browser"
	"github.com/luispater/webToolsMCP/internal/config"
	"github.com/luispater/webToolsMCP/internal/method"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
)

// invocation runs a validated tool call against a freshly opened page.
type invocation func(ctx context.Context, m *method.Method) (*mcp.CallToolResult, error)

type tool struct {
	descriptor mcp.Tool
	prepare    func(req mcp.CallToolRequest) (invocation, error)
}

// Dispatcher routes tool calls to the screenshot capturer or the page extractor.
// Every call gets its own page, closed before Dispatch returns.
type Dispatcher struct {
	provider     browser.Provider
	opts         method.Options
	includeImage bool
	tools        map[string]tool
}

func NewDispatcher(provider browser.Provider, cfg *config.AppConfig) *Dispatcher {
	d := &Dispatcher{
		provider:     provider,
		opts:         method.OptionsFromConfig(cfg),
		includeImage: cfg.Screenshot.IncludeImage,
	}
	d.tools = map[string]tool{
		ScreenshotToolName: {descriptor: ScreenshotTool(), prepare: d.prepareScreenshot},
		ContentToolName:    {descriptor: ContentTool(), prepare: d.prepareContent},
	}
	return d
}

// ListTools returns the static tool catalog.
func (d *Dispatcher) ListTools() []mcp.Tool {
	return Catalog()
}

// Register adds every catalog tool to the MCP server.
func (d *Dispatcher) Register(s *server.MCPServer) {
	for _, t := range Catalog() {
		s.AddTool(t, d.HandleCall)
	}
}

// HandleCall adapts Dispatch to the mcp-go handler signature. It never returns an error.
func (d *Dispatcher) HandleCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return d.Dispatch(ctx, req), nil
}

// Dispatch executes one tool call. All failures, panics included, come back as an
// error result flagged with isError.
func (d *Dispatcher) Dispatch(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult) {
	id := uuid.NewString()
	name := req.Params.Name
	start := time.Now()
	log.Debugf("Invocation %s: %s started", id, name)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Invocation %s: %s panicked: %v", id, name, r)
			result = errorResult(fmt.Errorf("internal error: %v", r))
		}
		if result.IsError {
			log.Infof("Invocation %s: %s failed in %v", id, name, time.Since(start))
		} else {
			log.Debugf("Invocation %s: %s completed in %v", id, name, time.Since(start))
		}
	}()

	t, ok := d.tools[name]
	if !ok {
		return errorResult(fmt.Errorf("unknown tool: %s", name))
	}

	run, err := t.prepare(req)
	if err != nil {
		return errorResult(err)
	}

	page, err := d.provider.NewPage(ctx)
	if err != nil {
		return errorResult(err)
	}
	defer func() {
		if errClose := page.Close(); errClose != nil {
			log.Debugf("Invocation %s: closing page: %v", id, errClose)
		}
	}()

	result, err = run(ctx, method.NewMethod(page, d.opts))
	if err != nil {
		log.Debugf("Invocation %s: %v", id, err)
		return errorResult(err)
	}
	return result
}

func (d *Dispatcher) prepareScreenshot(req mcp.CallToolRequest) (invocation, error) {
	url, err := requireURL(req)
	if err != nil {
		return nil, err
	}
	fullPage := req.GetBool("fullPage", false)

	return func(ctx context.Context, m *method.Method) (*mcp.CallToolResult, error) {
		shot, err := m.Screenshot(ctx, url, fullPage)
		if err != nil {
			return nil, err
		}
		result := mcp.NewToolResultText(shot.Summary())
		if d.includeImage {
			result.Content = append(result.Content, mcp.NewImageContent(shot.Encoded, "image/png"))
		}
		return result, nil
	}, nil
}

func (d *Dispatcher) prepareContent(req mcp.CallToolRequest) (invocation, error) {
	url, err := requireURL(req)
	if err != nil {
		return nil, err
	}
	mode, err := method.ParseMode(req.GetString("mode", string(method.DefaultMode)))
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, m *method.Method) (*mcp.CallToolResult, error) {
		content, err := m.Content(ctx, url, mode)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(content), nil
	}, nil
}

func requireURL(req mcp.CallToolRequest) (string, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("url is required")
	}
	return url, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}
