package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/luispater/webToolsMCP/internal/api"
	"github.com/luispater/webToolsMCP/internal/browser/chrome"
	"github.com/luispater/webToolsMCP/internal/config"
	"github.com/luispater/webToolsMCP/internal/tools"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type LogFormatter struct {
}

func (m *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	var newLog string
	if entry.HasCaller() {
		newLog = fmt.Sprintf("[%s] [%s] [%s:%d] %s\n", timestamp, entry.Level, path.Base(entry.Caller.File), entry.Caller.Line, entry.Message)
	} else {
		newLog = fmt.Sprintf("[%s] [%s] %s\n", timestamp, entry.Level, entry.Message)
	}

	b.WriteString(newLog)
	return b.Bytes(), nil
}

func init() {
	// stdout belongs to the protocol; diagnostics go to stderr.
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(true)
	log.SetFormatter(&LogFormatter{})
}

type options struct {
	configPath string
	debug      bool
	transport  string
	addr       string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "web-tools-mcp",
		Short:         "MCP server exposing web_screenshot and web_content backed by headless Chrome",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = opts.debug
			}
			if cmd.Flags().Changed("transport") {
				cfg.Transport = opts.transport
			}
			if cmd.Flags().Changed("addr") {
				cfg.HTTP.Addr = opts.addr
			}
			if err = cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if cfg.Debug {
				log.SetLevel(log.DebugLevel)
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the YAML configuration file")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&opts.transport, "transport", config.TransportStdio, "transport to serve: stdio or http")
	flags.StringVar(&opts.addr, "addr", "", "listen address for the http transport")

	return cmd
}

func run(cfg *config.AppConfig) error {
	manager := chrome.NewManager(cfg.Browser)
	defer func() {
		log.Debug("Closing browser manager...")
		if err := manager.Close(); err != nil {
			log.Debugf("Error closing browser manager: %v", err)
		}
	}()

	dispatcher := tools.NewDispatcher(manager, cfg)
	apiServer := api.NewServer(cfg, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Transport {
	case config.TransportHTTP:
		errChan := make(chan error, 1)
		go func() {
			errChan <- apiServer.StartHTTP()
		}()

		select {
		case err := <-errChan:
			return err
		case <-ctx.Done():
			log.Debug("Received shutdown signal. Cleaning up...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return apiServer.Stop(shutdownCtx)
		}
	default:
		err := apiServer.ServeStdio(ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Debug("stdio closed, shutting down")
		return nil
	}
}
