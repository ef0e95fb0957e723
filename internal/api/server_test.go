package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luispater/webToolsMCP/internal/browser"
	"github.com/luispater/webToolsMCP/internal/browser/browsertest"
	"github.com/luispater/webToolsMCP/internal/config"
	"github.com/luispater/webToolsMCP/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func rpcRequest(t *testing.T, id int, method string, params string) string {
	t.Helper()
	req, err := sjson.Set(`{"jsonrpc":"2.0"}`, "id", id)
	require.NoError(t, err)
	req, err = sjson.Set(req, "method", method)
	require.NoError(t, err)
	if params != "" {
		req, err = sjson.SetRaw(req, "params", params)
		require.NoError(t, err)
	}
	return req
}

func initializeRequest(t *testing.T, id int) string {
	return rpcRequest(t, id, "initialize",
		`{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test-client","version":"0.0.1"}}`)
}

func callParams(t *testing.T, name string, args map[string]interface{}) string {
	t.Helper()
	params, err := sjson.Set(`{}`, "name", name)
	require.NoError(t, err)
	params, err = sjson.Set(params, "arguments", args)
	require.NoError(t, err)
	return params
}

func newTestServer(provider browser.Provider) *Server {
	cfg := config.Default()
	cfg.Scroll.Interval = 0
	return NewServer(cfg, tools.NewDispatcher(provider, cfg))
}

func handle(t *testing.T, s *Server, request string) gjson.Result {
	t.Helper()
	response := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(request))
	require.NotNil(t, response)
	data, err := json.Marshal(response)
	require.NoError(t, err)
	return gjson.ParseBytes(data)
}

func TestServer_ListTools(t *testing.T) {
	s := newTestServer(&browsertest.Provider{})
	handle(t, s, initializeRequest(t, 1))

	res := handle(t, s, rpcRequest(t, 2, "tools/list", `{}`))

	tools := res.Get("result.tools")
	require.True(t, tools.IsArray())
	require.Len(t, tools.Array(), 2)

	byName := map[string]gjson.Result{}
	for _, tool := range tools.Array() {
		byName[tool.Get("name").String()] = tool
	}
	require.Contains(t, byName, "web_screenshot")
	require.Contains(t, byName, "web_content")
	assert.Equal(t, "text", byName["web_content"].Get("inputSchema.properties.mode.default").String())
	assert.False(t, byName["web_screenshot"].Get("inputSchema.properties.fullPage.default").Bool())
}

func TestServer_CallContentLinks(t *testing.T) {
	page := &browsertest.Page{
		Anchors: []browser.Link{
			{Text: "Home", Href: "http://x.com"},
			{Text: "Rel", Href: "/relative"},
		},
	}
	s := newTestServer(&browsertest.Provider{NewPageFunc: func() *browsertest.Page { return page }})
	handle(t, s, initializeRequest(t, 1))

	res := handle(t, s, rpcRequest(t, 2, "tools/call", callParams(t, "web_content", map[string]interface{}{
		"url":  "http://example.com",
		"mode": "links",
	})))

	assert.Equal(t, int64(2), res.Get("id").Int())
	assert.False(t, res.Get("result.isError").Bool())
	assert.Equal(t, "text", res.Get("result.content.0.type").String())

	links := gjson.Parse(res.Get("result.content.0.text").String())
	require.Len(t, links.Array(), 1)
	assert.Equal(t, "Home", links.Get("0.text").String())
	assert.Equal(t, "http://x.com", links.Get("0.href").String())
	assert.Equal(t, 1, page.CloseCalls())
}

func TestServer_CallNavigationFailure(t *testing.T) {
	page := &browsertest.Page{NavigateErr: assert.AnError}
	s := newTestServer(&browsertest.Provider{NewPageFunc: func() *browsertest.Page { return page }})
	handle(t, s, initializeRequest(t, 1))

	res := handle(t, s, rpcRequest(t, 2, "tools/call", callParams(t, "web_screenshot", map[string]interface{}{
		"url": "http://unreachable.invalid",
	})))

	assert.False(t, res.Get("error").Exists(), "tool failures are results, not protocol errors")
	assert.True(t, res.Get("result.isError").Bool())
	assert.Contains(t, res.Get("result.content.0.text").String(), assert.AnError.Error())
}

func TestServer_ServeStdio(t *testing.T) {
	s := newTestServer(&browsertest.Provider{})

	in := strings.Join([]string{
		initializeRequest(t, 1),
		rpcRequest(t, 2, "tools/list", `{}`),
	}, "\n") + "\n"
	var out bytes.Buffer

	require.NoError(t, s.ServeStdio(context.Background(), strings.NewReader(in), &out))

	responses := map[int64]gjson.Result{}
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		require.True(t, gjson.Valid(line), "stdout carries only JSON-RPC frames: %q", line)
		res := gjson.Parse(line)
		responses[res.Get("id").Int()] = res
	}

	require.Contains(t, responses, int64(1))
	assert.Equal(t, ServerName, responses[1].Get("result.serverInfo.name").String())
	require.Contains(t, responses, int64(2))
	assert.Len(t, responses[2].Get("result.tools").Array(), 2)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(&browsertest.Provider{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, "ok", body.Get("status").String())
	assert.Equal(t, ServerName, body.Get("name").String())
	assert.Equal(t, []interface{}{"web_screenshot", "web_content"}, body.Get("tools").Value())
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(&browsertest.Provider{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Mcp-Session-Id")
}

func TestServer_StopWithoutStart(t *testing.T) {
	s := newTestServer(&browsertest.Provider{})
	assert.NoError(t, s.Stop(context.Background()))
}
