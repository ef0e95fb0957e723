package tools

import (
	"github.com/luispater/webToolsMCP/internal/method"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	ScreenshotToolName = "web_screenshot"
	ContentToolName    = "web_content"
)

// ScreenshotTool describes web_screenshot.
func ScreenshotTool() mcp.Tool {
	return mcp.NewTool(ScreenshotToolName,
		mcp.WithDescription("Take a screenshot of the web page at the given URL and return it as base64."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the web page to capture"),
		),
		mcp.WithBoolean("fullPage",
			mcp.Description("Capture the full scrollable page instead of the visible viewport"),
			mcp.DefaultBool(false),
		),
	)
}

// ContentTool describes web_content.
func ContentTool() mcp.Tool {
	modes := make([]string, 0, len(method.Modes))
	for _, mode := range method.Modes {
		modes = append(modes, string(mode))
	}
	return mcp.NewTool(ContentToolName,
		mcp.WithDescription("Fetch the full content or the link list of the web page at the given URL."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the web page"),
		),
		mcp.WithString("mode",
			mcp.Description("'html' for rendered markup, 'text' for visible text, 'links' for a JSON list of absolute links"),
			mcp.Enum(modes...),
			mcp.DefaultString(string(method.DefaultMode)),
		),
	)
}

// Catalog returns every tool the server offers, in listing order.
func Catalog() []mcp.Tool {
	return []mcp.Tool{
		ScreenshotTool(),
		ContentTool(),
	}
}
