package api

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/luispater/webToolsMCP/internal/config"
	"github.com/luispater/webToolsMCP/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
)

const (
	ServerName    = "web-tools"
	ServerVersion = "1.0.0"
)

// Server exposes the tool dispatcher over MCP, on stdio or streamable HTTP.
type Server struct {
	cfg        *config.AppConfig
	mcp        *server.MCPServer
	dispatcher *tools.Dispatcher

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a new MCP server with the dispatcher's tools registered.
func NewServer(cfg *config.AppConfig, dispatcher *tools.Dispatcher) *Server {
	mcpServer := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	dispatcher.Register(mcpServer)

	return &Server{
		cfg:        cfg,
		mcp:        mcpServer,
		dispatcher: dispatcher,
	}
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves newline-delimited JSON-RPC on in/out until in is exhausted or ctx is done.
// Diagnostics go through logrus, never to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(stdlog.New(log.StandardLogger().WriterLevel(log.ErrorLevel), "", 0))

	log.Info("web tools MCP server running on stdio")
	if err := stdio.Listen(ctx, in, out); err != nil {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// Handler builds the HTTP routes: the MCP endpoint and a health check.
func (s *Server) Handler() http.Handler {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(requestLogger())
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	handlers := NewAPIHandlers(s.dispatcher)
	streamable := server.NewStreamableHTTPServer(s.mcp)

	engine.Any("/mcp", gin.WrapH(streamable))
	engine.GET("/healthz", handlers.Health)

	return engine
}

// StartHTTP serves the streamable HTTP transport and blocks until Stop.
func (s *Server) StartHTTP() error {
	srv := &http.Server{
		Addr:    s.cfg.HTTP.Addr,
		Handler: s.Handler(),
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	log.Infof("web tools MCP server listening on %s", s.cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	log.Debug("Stopping HTTP server...")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	log.Debug("HTTP server stopped")
	return nil
}

// requestLogger logs each HTTP request through logrus instead of gin's stdout writer.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debugf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.ClientIP())
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, Mcp-Session-Id")
		c.Header("Access-Control-Expose-Headers", "Mcp-Session-Id")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
